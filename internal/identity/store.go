// Package identity adapts the on-disk persona documents that stand in for
// a real identity registry. Documents are read-only from this system's
// perspective and are read fresh on every access; only policy and key
// material is cached for the process lifetime.
package identity

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	dErrors "mockauthn/pkg/domain-errors"
)

const personaFileSuffix = ".json"

// Record is one individual's identity document. The raw document is kept
// for locator-template extraction; the typed accessors cover the fields
// the authentication paths need directly.
type Record struct {
	IndividualID string
	doc          map[string]interface{}
}

// Document exposes the parsed JSON document for JSONPath evaluation.
func (r *Record) Document() interface{} {
	return r.doc
}

// PIN returns the stored plaintext PIN, or "" when absent.
func (r *Record) PIN() string {
	return r.stringField("pin")
}

// MaskedEmail returns the masked email display string.
func (r *Record) MaskedEmail() string {
	return r.stringField("maskedEmailId")
}

// MaskedMobile returns the masked mobile display string.
func (r *Record) MaskedMobile() string {
	return r.stringField("maskedMobile")
}

func (r *Record) stringField(name string) string {
	if v, ok := r.doc[name].(string); ok {
		return v
	}
	return ""
}

// Store loads persona documents from a directory, one
// <individualId>.json file per individual.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// LoadRecord reads and parses the individual's persona document. A missing
// or malformed document surfaces as not-found so callers can treat it as
// an authentication failure rather than a fault.
func (s *Store) LoadRecord(individualID string) (*Record, error) {
	if individualID == "" || strings.ContainsAny(individualID, `/\`) || individualID != filepath.Base(individualID) {
		return nil, dErrors.New(dErrors.CodeNotFound, "individual record not found")
	}

	raw, err := os.ReadFile(filepath.Join(s.dir, individualID+personaFileSuffix))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "individual record not found")
	}

	doc := map[string]interface{}{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "individual record not found")
	}

	return &Record{IndividualID: individualID, doc: doc}, nil
}
