package service

import (
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"mockauthn/internal/claims"
	pstrings "mockauthn/pkg/platform/strings"
)

// resolveClaims filters the requested claims through the relying party's
// allow-list and the claims mapping, then resolves locale-tagged values
// from the individual's persona document.
//
// Resolution is best effort by design: claims with no mapping, attributes
// off the allow-list, and locales that fail to produce a value are dropped
// silently. A missing persona yields an empty set, not an error. Policy
// load failures do propagate; without a policy the exchange cannot
// proceed anyway.
func (s *Service) resolveClaims(relyingPartyID, individualID string, requested, locales []string) (map[string]string, error) {
	kyc := map[string]string{}

	pol, err := s.policies.LoadPolicy(relyingPartyID)
	if err != nil {
		return nil, err
	}

	record, err := s.identities.LoadRecord(individualID)
	if err != nil {
		s.logger.Warn("claims resolution found no persona", "error", err)
		return kyc, nil
	}

	locales = pstrings.DedupeAndTrim(locales)
	if len(locales) == 0 {
		locales = []string{claims.DefaultLocale}
	}

	for _, claim := range pstrings.DedupeAndTrim(requested) {
		attribute, ok := s.mapping.AttributeFor(claim)
		if !ok || !pol.Allows(attribute) {
			continue
		}
		info, ok := s.mapping.PathInfoFor(attribute)
		if !ok {
			continue
		}

		// One candidate value per requested locale; locales that do not
		// resolve are skipped.
		resolved := make(map[string]string, len(locales))
		order := make([]string, 0, len(locales))
		for _, locale := range locales {
			value, ok := s.extractValue(record.Document(), info, locale)
			if !ok {
				continue
			}
			resolved[locale] = value
			order = append(order, locale)
		}

		switch len(resolved) {
		case 0:
			// No locale produced a value; the claim is omitted.
		case 1:
			kyc[claim] = resolved[order[0]]
		default:
			// Tagging is driven by the count of resolving locales, not by
			// value equality.
			for _, locale := range order {
				kyc[claim+"#"+locale] = resolved[locale]
			}
		}
	}

	return kyc, nil
}

// extractValue substitutes the canonical locale into the locator template
// and evaluates it against the persona document. Multi-valued results
// collapse to their first element.
func (s *Service) extractValue(document interface{}, info claims.PathInfo, locale string) (string, bool) {
	canonical := s.mapping.CanonicalLocale(locale, info.DefaultLocale)
	path := strings.ReplaceAll(info.Path, claims.LocalePlaceholder, canonical)

	value, err := jsonpath.Get(path, document)
	if err != nil {
		return "", false
	}

	switch v := value.(type) {
	case string:
		return v, true
	case []interface{}:
		if len(v) == 0 {
			return "", false
		}
		first, ok := v[0].(string)
		return first, ok
	}
	return "", false
}
