package service

import (
	"encoding/base64"

	"golang.org/x/crypto/sha3"

	dErrors "mockauthn/pkg/domain-errors"
)

// DerivePSUT produces the partner-specific user token: a deterministic,
// one-way SHA3-256 digest over the (individual, relying party) pair,
// base64url encoded without padding. The same pair always yields the same
// value; different relying parties yield unlinkable values for the same
// individual.
func DerivePSUT(individualID, relyingPartyID string) (string, error) {
	if individualID == "" || relyingPartyID == "" {
		return "", dErrors.New(dErrors.CodeInternal, "psut inputs must be non-empty")
	}

	digest := sha3.New256()
	if _, err := digest.Write([]byte(individualID + relyingPartyID)); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "psut digest failed")
	}
	return base64.RawURLEncoding.EncodeToString(digest.Sum(nil)), nil
}
