package service

import (
	"crypto/subtle"

	"mockauthn/internal/kyc/models"
)

// acceptedOTP is the one literal the mock accepts, simulating a completed
// send/verify cycle. No OTP is ever generated or delivered.
const acceptedOTP = "111111"

// verifyChallenge validates one challenge against the individual's stored
// record. Storage failures count as verification failure for that
// challenge, never as a fault.
func (s *Service) verifyChallenge(individualID string, challenge models.AuthChallenge) bool {
	switch challenge.AuthFactorType {
	case models.FactorPIN:
		return s.verifyPIN(individualID, challenge.Challenge)
	case models.FactorOTP:
		return s.verifyOTP(individualID, challenge.Challenge)
	case models.FactorBIO:
		return s.verifyBio(individualID)
	}
	return false
}

func (s *Service) verifyPIN(individualID, pin string) bool {
	record, err := s.identities.LoadRecord(individualID)
	if err != nil {
		s.logger.Warn("pin verification failed to load record", "error", err)
		return false
	}
	stored := record.PIN()
	return stored != "" && subtle.ConstantTimeCompare([]byte(stored), []byte(pin)) == 1
}

func (s *Service) verifyOTP(individualID, otp string) bool {
	if _, err := s.identities.LoadRecord(individualID); err != nil {
		s.logger.Warn("otp verification failed to load record", "error", err)
		return false
	}
	return otp == acceptedOTP
}

// verifyBio accepts on record existence alone; the challenge content is
// ignored. This is a documented simplification of the mock, not a bug.
func (s *Service) verifyBio(individualID string) bool {
	if _, err := s.identities.LoadRecord(individualID); err != nil {
		s.logger.Warn("bio verification failed to load record", "error", err)
		return false
	}
	return true
}
