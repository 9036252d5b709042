// Package claims holds the static translation table between the external
// claim vocabulary and the internal attribute locators, plus the locale
// canonicalization table. The document is loaded once at construction and
// is immutable afterwards; edits on disk are invisible until restart.
package claims

import (
	"encoding/json"
	"os"
	"strings"

	dErrors "mockauthn/pkg/domain-errors"
)

// LocalePlaceholder is substituted with a canonical locale when a locator
// template is resolved against a persona document.
const LocalePlaceholder = "_LOCALE_"

// DefaultLocale applies when the caller requests no locales at all.
const DefaultLocale = "en"

// PathInfo locates an attribute inside a persona document.
type PathInfo struct {
	// Path is a JSONPath template, usually carrying LocalePlaceholder.
	Path string `json:"path"`
	// DefaultLocale is the fallback when a requested locale has no entry
	// in the locale table.
	DefaultLocale string `json:"defaultLocale"`
}

type mappingDocument struct {
	Claims     map[string]string   `json:"claims"`
	Attributes map[string]PathInfo `json:"attributes"`
	Locales    map[string]string   `json:"locales"`
}

// Mapping is the immutable claims translation table.
type Mapping struct {
	claims     map[string]string
	attributes map[string]PathInfo
	locales    map[string]string
}

// LoadMapping parses the mapping document at path. Call once at startup.
func LoadMapping(path string) (*Mapping, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "claims mapping file unreadable")
	}

	var doc mappingDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "claims mapping file malformed")
	}

	return &Mapping{
		claims:     doc.Claims,
		attributes: doc.Attributes,
		locales:    doc.Locales,
	}, nil
}

// AttributeFor translates an external claim name into the internal
// attribute name. A missing or blank mapping reports false.
func (m *Mapping) AttributeFor(claim string) (string, bool) {
	attr, ok := m.claims[claim]
	if !ok || strings.TrimSpace(attr) == "" {
		return "", false
	}
	return attr, true
}

// PathInfoFor returns the locator template for an attribute. Attributes
// with a blank path report false.
func (m *Mapping) PathInfoFor(attribute string) (PathInfo, bool) {
	info, ok := m.attributes[attribute]
	if !ok || strings.TrimSpace(info.Path) == "" {
		return PathInfo{}, false
	}
	return info, true
}

// CanonicalLocale maps a requested locale tag to the canonical form used
// inside locator templates, falling back to the attribute's own default
// when the tag has no entry.
func (m *Mapping) CanonicalLocale(requested, fallback string) string {
	if canonical, ok := m.locales[requested]; ok {
		return canonical
	}
	return fallback
}
