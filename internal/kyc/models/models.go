// Package models defines the request and result shapes of the kyc
// capability surface.
package models

import (
	"strings"

	dErrors "mockauthn/pkg/domain-errors"
)

// AuthFactor is one authentication factor type.
type AuthFactor string

const (
	FactorPIN AuthFactor = "PIN"
	FactorOTP AuthFactor = "OTP"
	FactorBIO AuthFactor = "BIO"
)

// AuthChallenge is one factor proof supplied with an authentication
// request. Transient; never stored.
type AuthChallenge struct {
	AuthFactorType AuthFactor `json:"authFactorType"`
	Challenge      string     `json:"challenge"`
}

// KycAuthRequest asks to authenticate an individual with one or more
// challenges.
type KycAuthRequest struct {
	IndividualID  string          `json:"individualId"`
	ChallengeList []AuthChallenge `json:"challengeList"`
}

// Normalize trims caller-supplied identifiers.
func (r *KycAuthRequest) Normalize() {
	r.IndividualID = strings.TrimSpace(r.IndividualID)
}

// Validate rejects structurally unusable requests. An empty challenge
// list is rejected: authentication must rest on at least one proof.
func (r *KycAuthRequest) Validate() error {
	if r.IndividualID == "" {
		return dErrors.New(dErrors.CodeValidation, "individualId is required")
	}
	if len(r.ChallengeList) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one challenge is required")
	}
	for _, ch := range r.ChallengeList {
		if ch.AuthFactorType == "" {
			return dErrors.New(dErrors.CodeValidation, "challenge factor type is required")
		}
	}
	return nil
}

// KycAuthResult carries the issued kyc token and the pseudonymous subject.
type KycAuthResult struct {
	KycToken                 string `json:"kycToken"`
	PartnerSpecificUserToken string `json:"partnerSpecificUserToken"`
}

// KycExchangeRequest asks to exchange a kyc token for encrypted claims.
type KycExchangeRequest struct {
	KycToken       string   `json:"kycToken"`
	AcceptedClaims []string `json:"acceptedClaims"`
	ClaimsLocales  []string `json:"claimsLocales"`
}

// Validate rejects structurally unusable requests.
func (r *KycExchangeRequest) Validate() error {
	if strings.TrimSpace(r.KycToken) == "" {
		return dErrors.New(dErrors.CodeValidation, "kycToken is required")
	}
	return nil
}

// KycExchangeResult carries the signed-then-encrypted claims envelope.
type KycExchangeResult struct {
	EncryptedKyc string `json:"encryptedKyc"`
}

// OtpRequest asks to deliver an OTP over the given channels. Delivery is
// simulated; the response only echoes the masked contact display strings.
type OtpRequest struct {
	TransactionID string   `json:"transactionId"`
	IndividualID  string   `json:"individualId"`
	OtpChannels   []string `json:"otpChannels"`
}

// Normalize trims caller-supplied identifiers.
func (r *OtpRequest) Normalize() {
	r.TransactionID = strings.TrimSpace(r.TransactionID)
	r.IndividualID = strings.TrimSpace(r.IndividualID)
}

// Validate rejects structurally unusable requests. Between one and two
// channels may be requested.
func (r *OtpRequest) Validate() error {
	if r.TransactionID == "" {
		return dErrors.New(dErrors.CodeValidation, "transactionId is required")
	}
	if r.IndividualID == "" {
		return dErrors.New(dErrors.CodeValidation, "individualId is required")
	}
	if len(r.OtpChannels) < 1 || len(r.OtpChannels) > 2 {
		return dErrors.New(dErrors.CodeValidation, "otpChannels must carry one or two entries")
	}
	return nil
}

// SendOtpResult echoes the transaction and the masked contact strings.
type SendOtpResult struct {
	TransactionID string `json:"transactionId"`
	MaskedEmail   string `json:"maskedEmail"`
	MaskedMobile  string `json:"maskedMobile"`
}
