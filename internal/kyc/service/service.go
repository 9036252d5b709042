// Package service implements the kyc capability surface: authentication,
// claims exchange, and simulated OTP delivery. Each call is independent
// and stateless; the only shared state lives in the injected policy,
// mapping, and key-material stores.
package service

import (
	"context"
	"log/slog"

	"mockauthn/internal/claims"
	"mockauthn/internal/identity"
	"mockauthn/internal/keymanager"
	"mockauthn/internal/kyc/models"
	"mockauthn/internal/platform/metrics"
	"mockauthn/internal/policy"
	"mockauthn/internal/signature"
	"mockauthn/internal/token"
)

type Service struct {
	identities *identity.Store
	policies   *policy.Store
	mapping    *claims.Mapping
	tokens     *token.Service
	signer     *signature.Service
	keys       *keymanager.Service
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(
	identities *identity.Store,
	policies *policy.Store,
	mapping *claims.Mapping,
	tokens *token.Service,
	signer *signature.Service,
	keys *keymanager.Service,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		identities: identities,
		policies:   policies,
		mapping:    mapping,
		tokens:     tokens,
		signer:     signer,
		keys:       keys,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DoKycAuth authenticates the individual against the supplied challenges
// and, on success, issues a kyc token bound to the client and relying
// party together with the pseudonymous subject token.
func (s *Service) DoKycAuth(ctx context.Context, relyingPartyID, clientID string, req *models.KycAuthRequest) (*models.KycAuthResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		s.observeAuth(false)
		return nil, err
	}

	allowed := s.resolveAuthFactors(relyingPartyID)
	ok := true
	for _, challenge := range req.ChallengeList {
		if !factorAllowed(allowed, challenge.AuthFactorType) || !s.verifyChallenge(req.IndividualID, challenge) {
			ok = false
			break
		}
	}
	s.logger.InfoContext(ctx, "kyc auth evaluated",
		"relying_party_id", relyingPartyID,
		"allowed_factors", allowed,
		"result", ok,
	)
	if !ok {
		s.observeAuth(false)
		return nil, models.ErrAuthFailed()
	}

	psut, err := DerivePSUT(req.IndividualID, relyingPartyID)
	if err != nil {
		s.logger.ErrorContext(ctx, "psut derivation failed", "error", err)
		s.observeAuth(false)
		return nil, models.ErrHashGeneration(err)
	}

	kycToken, err := s.tokens.Issue(req.IndividualID, clientID, relyingPartyID, psut)
	if err != nil {
		s.logger.ErrorContext(ctx, "kyc token issuance failed", "error", err)
		s.observeAuth(false)
		return nil, err
	}

	s.observeAuth(true)
	return &models.KycAuthResult{
		KycToken:                 kycToken,
		PartnerSpecificUserToken: psut,
	}, nil
}

// SendOtp simulates OTP delivery: it only confirms the individual exists
// and returns the masked contact display strings for the UI.
func (s *Service) SendOtp(ctx context.Context, relyingPartyID, clientID string, req *models.OtpRequest) (*models.SendOtpResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		s.observeOtp(false)
		return nil, err
	}

	record, err := s.identities.LoadRecord(req.IndividualID)
	if err != nil {
		s.logger.WarnContext(ctx, "send otp failed, no individual record",
			"relying_party_id", relyingPartyID,
			"client_id", clientID,
		)
		s.observeOtp(false)
		return nil, models.ErrSendOtpFailed()
	}

	s.observeOtp(true)
	return &models.SendOtpResult{
		TransactionID: req.TransactionID,
		MaskedEmail:   record.MaskedEmail(),
		MaskedMobile:  record.MaskedMobile(),
	}, nil
}

// resolveAuthFactors returns the factor types the relying party may use.
// TODO: read this from the relying-party policy once the policy schema
// defines an auth-factor section; until then every party gets the full
// fixed set.
func (s *Service) resolveAuthFactors(string) []models.AuthFactor {
	return []models.AuthFactor{models.FactorPIN, models.FactorOTP, models.FactorBIO}
}

func factorAllowed(allowed []models.AuthFactor, factor models.AuthFactor) bool {
	for _, a := range allowed {
		if a == factor {
			return true
		}
	}
	return false
}

func (s *Service) observeAuth(success bool) {
	if s.metrics != nil {
		s.metrics.ObserveAuth(success)
	}
}

func (s *Service) observeOtp(success bool) {
	if s.metrics != nil {
		s.metrics.ObserveOtp(success)
	}
}

func (s *Service) observeExchange(success bool) {
	if s.metrics != nil {
		s.metrics.ObserveExchange(success)
	}
}
