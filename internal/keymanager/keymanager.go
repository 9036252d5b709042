// Package keymanager owns per-application signing key material. Keys are
// generated in process and live for the lifetime of the process; rotation
// and persistent storage are out of scope for a mock authority.
package keymanager

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	dErrors "mockauthn/pkg/domain-errors"
)

const rsaKeyBits = 2048

// KeyPair bundles an application's private key with its self-signed
// certificate. The certificate rides along in signed artifacts so relying
// parties can pin the signer.
type KeyPair struct {
	ApplicationID string
	KeyID         string
	Private       *rsa.PrivateKey
	Certificate   *x509.Certificate
}

// CertHash returns the base64url (no padding) SHA-256 of the DER
// certificate, the value carried in the x5t#S256 JOSE header.
func (k *KeyPair) CertHash() string {
	sum := sha256.Sum256(k.Certificate.Raw)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Service is an in-memory key registry keyed by application identifier.
type Service struct {
	mu     sync.RWMutex
	keys   map[string]*KeyPair
	group  singleflight.Group
	logger *slog.Logger
}

func New(logger *slog.Logger) *Service {
	return &Service{
		keys:   make(map[string]*KeyPair),
		logger: logger,
	}
}

// GetKeyPair returns the key pair for the application, or a not-found
// error when none has been generated yet.
func (s *Service) GetKeyPair(applicationID string) (*KeyPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if kp, ok := s.keys[applicationID]; ok {
		return kp, nil
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "no key pair for application "+applicationID)
}

// GetCertificate returns the application's certificate, or not-found.
func (s *Service) GetCertificate(applicationID string) (*x509.Certificate, error) {
	kp, err := s.GetKeyPair(applicationID)
	if err != nil {
		return nil, err
	}
	return kp.Certificate, nil
}

// GenerateKeyPair creates a fresh RSA key pair and self-signed certificate
// for the application. If a pair already exists it wins and the new one is
// discarded, so duplicate generation attempts cannot corrupt callers that
// already hold a reference.
func (s *Service) GenerateKeyPair(applicationID string) (*KeyPair, error) {
	kp, err := newKeyPair(applicationID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.keys[applicationID]; ok {
		return existing, nil
	}
	s.keys[applicationID] = kp
	s.logger.Info("generated signing key pair", "application_id", applicationID, "key_id", kp.KeyID)
	return kp, nil
}

// Provision returns the application's key pair, generating one on first
// use. Concurrent first callers are collapsed onto a single generation via
// singleflight; every caller observes the same winning pair.
func (s *Service) Provision(applicationID string) (*KeyPair, error) {
	if kp, err := s.GetKeyPair(applicationID); err == nil {
		return kp, nil
	}

	v, err, _ := s.group.Do(applicationID, func() (interface{}, error) {
		return s.GenerateKeyPair(applicationID)
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "signing key provisioning failed")
	}
	return v.(*KeyPair), nil
}

func newKeyPair(applicationID string) (*KeyPair, error) {
	private, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "rsa key generation failed")
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "certificate serial generation failed")
	}

	now := time.Now()
	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: applicationID},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.AddDate(1, 0, 0),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &private.PublicKey, private)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "self-signed certificate creation failed")
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "certificate parse failed")
	}

	return &KeyPair{
		ApplicationID: applicationID,
		KeyID:         uuid.NewString(),
		Private:       private,
		Certificate:   cert,
	}, nil
}
