package policy

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-jose/go-jose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "mockauthn/pkg/domain-errors"
)

func testPublicKeyJSON(t *testing.T) string {
	t.Helper()
	private, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	jwk := jose.JSONWebKey{Key: &private.PublicKey, KeyID: "rp-key-1", Algorithm: "RSA-OAEP-256", Use: "enc"}
	raw, err := jwk.MarshalJSON()
	require.NoError(t, err)
	return string(raw)
}

func writePolicy(t *testing.T, dir, rpID, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, rpID+"_policy.json"), []byte(content), 0o600))
}

func TestLoadPolicy(t *testing.T) {
	dir := t.TempDir()
	writePolicy(t, dir, "rp-1", fmt.Sprintf(`{
		"publicKey": %s,
		"allowedKycAttributes": [
			{"attributeName": "fullName"},
			{"attributeName": "dateOfBirth"},
			{"attributeName": ""}
		]
	}`, testPublicKeyJSON(t)))

	store := NewStore(dir)
	rec, err := store.LoadPolicy("rp-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"fullName", "dateOfBirth"}, rec.AllowedAttributes)
	assert.True(t, rec.Allows("fullName"))
	assert.False(t, rec.Allows("emailId"))
	assert.Equal(t, "rp-key-1", rec.PublicKey.KeyID)
	require.NotNil(t, rec.RSAPublicKey())
}

func TestLoadPolicyMissing(t *testing.T) {
	store := NewStore(t.TempDir())
	_, err := store.LoadPolicy("absent")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestLoadPolicyMalformed(t *testing.T) {
	dir := t.TempDir()
	writePolicy(t, dir, "rp-1", `{broken`)
	store := NewStore(dir)
	_, err := store.LoadPolicy("rp-1")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestLoadPolicyIgnoresLaterFileChanges(t *testing.T) {
	dir := t.TempDir()
	writePolicy(t, dir, "rp-1", fmt.Sprintf(`{
		"publicKey": %s,
		"allowedKycAttributes": [{"attributeName": "fullName"}]
	}`, testPublicKeyJSON(t)))

	store := NewStore(dir)
	first, err := store.LoadPolicy("rp-1")
	require.NoError(t, err)
	require.Equal(t, []string{"fullName"}, first.AllowedAttributes)

	// Rewriting the file must not be observed until restart.
	writePolicy(t, dir, "rp-1", fmt.Sprintf(`{
		"publicKey": %s,
		"allowedKycAttributes": [{"attributeName": "emailId"}]
	}`, testPublicKeyJSON(t)))

	second, err := store.LoadPolicy("rp-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"fullName"}, second.AllowedAttributes)
	assert.Same(t, first, second)
}

func TestLoadPolicyWithoutKeySection(t *testing.T) {
	dir := t.TempDir()
	writePolicy(t, dir, "rp-1", `{"allowedKycAttributes": [{"attributeName": "fullName"}]}`)

	store := NewStore(dir)
	rec, err := store.LoadPolicy("rp-1")
	require.NoError(t, err)
	assert.Nil(t, rec.RSAPublicKey())
}
