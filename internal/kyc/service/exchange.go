package service

import (
	"context"

	"github.com/go-jose/go-jose/v3"

	"mockauthn/internal/kyc/models"
	"mockauthn/internal/signature"
	"mockauthn/internal/token"
	dErrors "mockauthn/pkg/domain-errors"
)

// DoKycExchange verifies the kyc token and converts it into a signed,
// encrypted claim bundle for the relying party. Token verification
// failures surface as invalid_token; every failure after that point is
// collapsed into the generic exchange_failed, with the cause kept only
// for logs.
func (s *Service) DoKycExchange(ctx context.Context, relyingPartyID, clientID string, req *models.KycExchangeRequest) (*models.KycExchangeResult, error) {
	if err := req.Validate(); err != nil {
		s.observeExchange(false)
		return nil, err
	}
	s.logger.InfoContext(ctx, "kyc exchange requested",
		"relying_party_id", relyingPartyID,
		"accepted_claims", req.AcceptedClaims,
		"claims_locales", req.ClaimsLocales,
	)

	verified, err := s.tokens.Verify(req.KycToken, clientID)
	if err != nil {
		s.observeExchange(false)
		return nil, models.ErrInvalidToken()
	}

	kyc, err := s.resolveClaims(relyingPartyID, verified.Subject, req.AcceptedClaims, req.ClaimsLocales)
	if err != nil {
		s.logger.ErrorContext(ctx, "claims resolution failed", "error", err)
		s.observeExchange(false)
		return nil, models.ErrExchangeFailed(err)
	}
	// The relying party only ever sees the pseudonymous subject.
	kyc["sub"] = verified.PSUT

	envelope, err := s.packageClaims(relyingPartyID, kyc)
	if err != nil {
		s.logger.ErrorContext(ctx, "claims packaging failed", "error", err)
		s.observeExchange(false)
		return nil, models.ErrExchangeFailed(err)
	}

	s.observeExchange(true)
	return &models.KycExchangeResult{EncryptedKyc: envelope}, nil
}

// packageClaims signs the resolved claim set and encrypts the signed
// artifact for the relying party: RSA-OAEP-256 key wrapping, A256GCM
// content encryption, cty JWT, kid naming the relying-party key used.
func (s *Service) packageClaims(relyingPartyID string, kyc map[string]string) (string, error) {
	if _, err := s.keys.Provision(token.ApplicationID); err != nil {
		return "", err
	}

	payload := make(map[string]interface{}, len(kyc))
	for name, value := range kyc {
		payload[name] = value
	}
	signed, err := s.signer.SignJWT(signature.SignRequest{
		ApplicationID:      token.ApplicationID,
		Claims:             payload,
		IncludeCertificate: true,
		IncludeCertHash:    true,
	})
	if err != nil {
		return "", err
	}

	pol, err := s.policies.LoadPolicy(relyingPartyID)
	if err != nil {
		return "", err
	}
	publicKey := pol.RSAPublicKey()
	if publicKey == nil {
		return "", dErrors.New(dErrors.CodeInternal, "relying party has no encryption key")
	}

	encrypter, err := jose.NewEncrypter(
		jose.A256GCM,
		jose.Recipient{Algorithm: jose.RSA_OAEP_256, Key: publicKey, KeyID: pol.PublicKey.KeyID},
		(&jose.EncrypterOptions{}).WithContentType("JWT"),
	)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "jwe encrypter construction failed")
	}
	object, err := encrypter.Encrypt([]byte(signed))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "jwe encryption failed")
	}
	compact, err := object.CompactSerialize()
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "jwe serialization failed")
	}
	return compact, nil
}
