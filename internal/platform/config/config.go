package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration. Values come from the
// environment so main stays lean; defaults suit local integration testing.
type Server struct {
	Addr string

	// PersonaDir holds one <individualId>.json document per individual.
	PersonaDir string
	// PolicyDir holds one <relyingPartyId>_policy.json document per
	// relying party.
	PolicyDir string
	// ClaimsMappingFile is the static claims/attributes/locales table,
	// loaded once at startup.
	ClaimsMappingFile string

	// KycTokenTTL bounds the lifetime of issued kyc tokens. Expiry is the
	// only defense against replay; there is no revocation list.
	KycTokenTTL time.Duration
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("MOCK_AUTHN_ADDR")
	if addr == "" {
		addr = ":8089"
	}

	personaDir := os.Getenv("MOCK_AUTHN_PERSONA_DIR")
	if personaDir == "" {
		personaDir = "./data/personas"
	}
	policyDir := os.Getenv("MOCK_AUTHN_POLICY_DIR")
	if policyDir == "" {
		policyDir = "./data/policies"
	}
	mappingFile := os.Getenv("MOCK_AUTHN_CLAIMS_MAPPING_FILE")
	if mappingFile == "" {
		mappingFile = "./data/claims_mapping.json"
	}

	ttl := 300
	if raw := os.Getenv("MOCK_AUTHN_KYC_TOKEN_TTL_SECONDS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			ttl = parsed
		}
	}

	return Server{
		Addr:              addr,
		PersonaDir:        personaDir,
		PolicyDir:         policyDir,
		ClaimsMappingFile: mappingFile,
		KycTokenTTL:       time.Duration(ttl) * time.Second,
	}
}
