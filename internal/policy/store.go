// Package policy adapts per-relying-party policy documents: the attribute
// allow-list and the party's public encryption key. Records are loaded
// lazily and cached for the process lifetime; a policy file edited on disk
// after first load is not observed until restart.
package policy

import (
	"crypto/rsa"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/bluele/gcache"
	"github.com/go-jose/go-jose/v3"

	dErrors "mockauthn/pkg/domain-errors"
)

const (
	policyFileSuffix = "_policy.json"
	// cacheSize bounds the number of relying parties held at once. The
	// mock never serves anywhere near this many.
	cacheSize = 512
)

// Record is one relying party's cached policy.
type Record struct {
	RelyingPartyID    string
	AllowedAttributes []string
	// PublicKey is the party's RSA encryption key, used to wrap the
	// content-encryption key of the exchange envelope.
	PublicKey jose.JSONWebKey

	allowed map[string]struct{}
}

// Allows reports whether the attribute is on the relying party's
// allow-list. Anything not explicitly listed is denied.
func (r *Record) Allows(attribute string) bool {
	_, ok := r.allowed[attribute]
	return ok
}

// RSAPublicKey returns the typed key for envelope encryption.
func (r *Record) RSAPublicKey() *rsa.PublicKey {
	key, _ := r.PublicKey.Key.(*rsa.PublicKey)
	return key
}

type policyDocument struct {
	PublicKey            json.RawMessage `json:"publicKey"`
	AllowedKycAttributes []struct {
		AttributeName string `json:"attributeName"`
	} `json:"allowedKycAttributes"`
}

// Store loads policy documents from a directory, one
// <relyingPartyId>_policy.json file per relying party.
type Store struct {
	dir   string
	cache gcache.Cache
}

func NewStore(dir string) *Store {
	s := &Store{dir: dir}
	// LoaderFunc makes first-time population atomic per key: concurrent
	// callers for the same relying party share one load.
	s.cache = gcache.New(cacheSize).
		LoaderFunc(func(key interface{}) (interface{}, error) {
			return s.load(key.(string))
		}).
		Build()
	return s
}

// LoadPolicy returns the relying party's policy, reading it from disk on
// first access only.
func (s *Store) LoadPolicy(relyingPartyID string) (*Record, error) {
	v, err := s.cache.Get(relyingPartyID)
	if err != nil {
		return nil, err
	}
	return v.(*Record), nil
}

func (s *Store) load(relyingPartyID string) (*Record, error) {
	if relyingPartyID == "" || strings.ContainsAny(relyingPartyID, `/\`) {
		return nil, dErrors.New(dErrors.CodeNotFound, "relying party policy not found")
	}

	raw, err := os.ReadFile(filepath.Join(s.dir, relyingPartyID+policyFileSuffix))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "relying party policy not found")
	}

	var doc policyDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "malformed relying party policy")
	}

	record := &Record{
		RelyingPartyID: relyingPartyID,
		allowed:        make(map[string]struct{}, len(doc.AllowedKycAttributes)),
	}
	for _, attr := range doc.AllowedKycAttributes {
		if attr.AttributeName == "" {
			continue
		}
		record.AllowedAttributes = append(record.AllowedAttributes, attr.AttributeName)
		record.allowed[attr.AttributeName] = struct{}{}
	}

	if len(doc.PublicKey) > 0 {
		if err := record.PublicKey.UnmarshalJSON(doc.PublicKey); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "malformed relying party public key")
		}
		if _, ok := record.PublicKey.Key.(*rsa.PublicKey); !ok {
			return nil, dErrors.New(dErrors.CodeInternal, "relying party key is not an RSA public key")
		}
	}

	return record, nil
}
