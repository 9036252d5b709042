package models

import (
	dErrors "mockauthn/pkg/domain-errors"
)

// Stable error codes surfaced to callers. The wrapped internal cause, when
// any, exists for logs only.
const (
	CodeAuthFailed     = "auth_failed"
	CodeInvalidToken   = "invalid_token"
	CodeExchangeFailed = "exchange_failed"
	CodeSendOtpFailed  = "send_otp_failed"
	CodeHashGeneration = "hash_generation_failed"
)

// ErrAuthFailed reports that challenge verification failed or used a
// disallowed factor.
func ErrAuthFailed() error {
	return dErrors.New(dErrors.CodeUnauthorized, CodeAuthFailed)
}

// ErrInvalidToken reports that the kyc token failed verification. Which
// sub-check failed is never exposed.
func ErrInvalidToken() error {
	return dErrors.New(dErrors.CodeUnauthorized, CodeInvalidToken)
}

// ErrExchangeFailed collapses any failure while building, signing, or
// encrypting the claim bundle into one generic condition; cause retained
// for logging.
func ErrExchangeFailed(cause error) error {
	return dErrors.Wrap(cause, dErrors.CodeInternal, CodeExchangeFailed)
}

// ErrSendOtpFailed reports that the individual has no stored record.
func ErrSendOtpFailed() error {
	return dErrors.New(dErrors.CodeNotFound, CodeSendOtpFailed)
}

// ErrHashGeneration reports a pseudonym-derivation fault. Distinct from
// ErrAuthFailed: this is a system fault, not a bad credential.
func ErrHashGeneration(cause error) error {
	return dErrors.Wrap(cause, dErrors.CodeInternal, CodeHashGeneration)
}
