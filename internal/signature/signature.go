// Package signature signs and verifies JWS artifacts on behalf of an
// application. Key material comes from the key manager; this service never
// generates keys itself.
package signature

import (
	"encoding/base64"

	"github.com/golang-jwt/jwt/v5"

	"mockauthn/internal/keymanager"
	dErrors "mockauthn/pkg/domain-errors"
)

// Keys is the slice of the key manager this service depends on.
type Keys interface {
	GetKeyPair(applicationID string) (*keymanager.KeyPair, error)
}

type Service struct {
	keys Keys
}

func New(keys Keys) *Service {
	return &Service{keys: keys}
}

// SignRequest controls the JOSE headers attached to a signed payload.
type SignRequest struct {
	ApplicationID string
	Claims        map[string]interface{}
	// IncludeCertificate embeds the signer certificate chain (x5c) so the
	// relying party can validate the signer offline.
	IncludeCertificate bool
	// IncludeCertHash embeds the x5t#S256 thumbprint for key pinning.
	IncludeCertHash bool
}

// SignJWT produces a compact RS256 JWS over the request claims using the
// application's current key.
func (s *Service) SignJWT(req SignRequest) (string, error) {
	kp, err := s.keys.GetKeyPair(req.ApplicationID)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "signing key unavailable")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims(req.Claims))
	token.Header["kid"] = kp.KeyID
	if req.IncludeCertificate {
		token.Header["x5c"] = []string{base64.StdEncoding.EncodeToString(kp.Certificate.Raw)}
	}
	if req.IncludeCertHash {
		token.Header["x5t#S256"] = kp.CertHash()
	}

	signed, err := token.SignedString(kp.Private)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "jwt signing failed")
	}
	return signed, nil
}

// VerifyJWT checks the compact JWS signature against the application's
// current key and returns the embedded claims. Claim-level validation
// (issuer, audience, expiry) is the caller's responsibility.
func (s *Service) VerifyJWT(applicationID, tokenString string) (jwt.MapClaims, error) {
	kp, err := s.keys.GetKeyPair(applicationID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "verification key unavailable")
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if _, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return &kp.Private.PublicKey, nil
	}); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "jwt signature verification failed")
	}
	return claims, nil
}
