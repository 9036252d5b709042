// Package token issues and verifies the short-lived kyc token that bridges
// authentication and exchange. The token is the only representation of the
// AUTHENTICATED state; nothing is persisted server side and expiry is the
// only replay defense.
package token

import (
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"mockauthn/internal/keymanager"
	"mockauthn/internal/signature"
	dErrors "mockauthn/pkg/domain-errors"
)

const (
	// ApplicationID identifies this mock authority; it owns the signing
	// key and appears as the token issuer.
	ApplicationID = "MOCK_AUTHN_SERVICE"
	// IdpServiceAudience is the only audience kyc tokens are minted for.
	IdpServiceAudience = "IDP_SERVICE"

	ClaimClientID       = "cid"
	ClaimRelyingPartyID = "rid"
	ClaimPSUT           = "psut"

	// clockSkew tolerated when checking expiry.
	clockSkew = 5 * time.Second
)

// requiredClaims must all be present for a kyc token to verify.
var requiredClaims = []string{"sub", "aud", "iss", "iat", "exp", ClaimClientID, ClaimRelyingPartyID}

// KycClaims is the verified content of a kyc token.
type KycClaims struct {
	Subject        string
	ClientID       string
	RelyingPartyID string
	PSUT           string
	IssuedAt       time.Time
	ExpiresAt      time.Time
}

type Service struct {
	signer *signature.Service
	keys   *keymanager.Service
	ttl    time.Duration
	logger *slog.Logger

	// now is swappable for expiry tests.
	now func() time.Time
}

func New(signer *signature.Service, keys *keymanager.Service, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{
		signer: signer,
		keys:   keys,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Issue mints a signed kyc token binding the individual, the client, the
// relying party, and the pseudonymous subject. The signing key is
// provisioned on first use; concurrent first callers converge on one key.
func (s *Service) Issue(individualID, clientID, relyingPartyID, psut string) (string, error) {
	if _, err := s.keys.Provision(ApplicationID); err != nil {
		return "", err
	}

	issuedAt := s.now()
	claims := map[string]interface{}{
		"iss":               ApplicationID,
		"sub":               individualID,
		"aud":               IdpServiceAudience,
		"iat":               issuedAt.Unix(),
		"exp":               issuedAt.Add(s.ttl).Unix(),
		ClaimClientID:       clientID,
		ClaimRelyingPartyID: relyingPartyID,
		ClaimPSUT:           psut,
	}
	return s.signer.SignJWT(signature.SignRequest{
		ApplicationID: ApplicationID,
		Claims:        claims,
	})
}

// errInvalidToken is the single caller-facing verification failure. Which
// sub-check failed is logged but never surfaced, to avoid acting as an
// oracle.
func errInvalidToken() error {
	return dErrors.New(dErrors.CodeUnauthorized, "invalid kyc token")
}

// Verify checks the token signature and claims and returns the verified
// content. expectedClientID must match the token's cid claim.
func (s *Service) Verify(kycToken, expectedClientID string) (*KycClaims, error) {
	claims, err := s.signer.VerifyJWT(ApplicationID, kycToken)
	if err != nil {
		s.logger.Warn("kyc token signature verification failed", "error", err)
		return nil, errInvalidToken()
	}

	for _, name := range requiredClaims {
		if _, ok := claims[name]; !ok {
			s.logger.Warn("kyc token missing required claim", "claim", name)
			return nil, errInvalidToken()
		}
	}

	if iss, _ := claims["iss"].(string); iss != ApplicationID {
		s.logger.Warn("kyc token issuer mismatch")
		return nil, errInvalidToken()
	}
	if !hasAudience(claims["aud"], IdpServiceAudience) {
		s.logger.Warn("kyc token audience mismatch")
		return nil, errInvalidToken()
	}

	expiresAt, ok := numericDate(claims["exp"])
	if !ok || s.now().After(expiresAt.Add(clockSkew)) {
		s.logger.Warn("kyc token expired")
		return nil, errInvalidToken()
	}
	issuedAt, ok := numericDate(claims["iat"])
	if !ok {
		s.logger.Warn("kyc token carries malformed iat")
		return nil, errInvalidToken()
	}

	clientID, _ := claims[ClaimClientID].(string)
	if clientID != expectedClientID {
		s.logger.Warn("kyc token client binding mismatch")
		return nil, errInvalidToken()
	}
	psut, _ := claims[ClaimPSUT].(string)
	if psut == "" {
		s.logger.Warn("kyc token carries no pseudonymous subject")
		return nil, errInvalidToken()
	}

	subject, _ := claims["sub"].(string)
	relyingPartyID, _ := claims[ClaimRelyingPartyID].(string)
	return &KycClaims{
		Subject:        subject,
		ClientID:       clientID,
		RelyingPartyID: relyingPartyID,
		PSUT:           psut,
		IssuedAt:       issuedAt,
		ExpiresAt:      expiresAt,
	}, nil
}

func hasAudience(aud interface{}, want string) bool {
	switch v := aud.(type) {
	case string:
		return v == want
	case []interface{}:
		for _, entry := range v {
			if s, ok := entry.(string); ok && s == want {
				return true
			}
		}
	case []string:
		for _, s := range v {
			if s == want {
				return true
			}
		}
	}
	return false
}

func numericDate(v interface{}) (time.Time, bool) {
	switch n := v.(type) {
	case float64:
		return time.Unix(int64(n), 0), true
	case int64:
		return time.Unix(n, 0), true
	case jwt.NumericDate:
		return n.Time, true
	}
	return time.Time{}, false
}
