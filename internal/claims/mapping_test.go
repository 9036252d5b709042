package claims

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMapping(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "claims_mapping.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const sampleMapping = `{
	"claims": {
		"name": "fullName",
		"email": "emailId",
		"unmapped": ""
	},
	"attributes": {
		"fullName": {"path": "$.fullName._LOCALE_", "defaultLocale": "en"},
		"emailId": {"path": "$.email", "defaultLocale": "en"},
		"blankPath": {"path": "  ", "defaultLocale": "en"}
	},
	"locales": {
		"eng": "en",
		"fra": "fr"
	}
}`

func TestLoadMapping(t *testing.T) {
	m, err := LoadMapping(writeMapping(t, sampleMapping))
	require.NoError(t, err)

	attr, ok := m.AttributeFor("name")
	require.True(t, ok)
	assert.Equal(t, "fullName", attr)

	info, ok := m.PathInfoFor("fullName")
	require.True(t, ok)
	assert.Equal(t, "$.fullName._LOCALE_", info.Path)
	assert.Equal(t, "en", info.DefaultLocale)
}

func TestAttributeForDropsMissingAndBlank(t *testing.T) {
	m, err := LoadMapping(writeMapping(t, sampleMapping))
	require.NoError(t, err)

	_, ok := m.AttributeFor("nonexistent")
	assert.False(t, ok)
	_, ok = m.AttributeFor("unmapped")
	assert.False(t, ok)
}

func TestPathInfoForDropsBlankPath(t *testing.T) {
	m, err := LoadMapping(writeMapping(t, sampleMapping))
	require.NoError(t, err)

	_, ok := m.PathInfoFor("blankPath")
	assert.False(t, ok)
	_, ok = m.PathInfoFor("nonexistent")
	assert.False(t, ok)
}

func TestCanonicalLocale(t *testing.T) {
	m, err := LoadMapping(writeMapping(t, sampleMapping))
	require.NoError(t, err)

	assert.Equal(t, "en", m.CanonicalLocale("eng", "xx"))
	assert.Equal(t, "fr", m.CanonicalLocale("fra", "xx"))
	// Unknown tags fall back to the attribute default.
	assert.Equal(t, "xx", m.CanonicalLocale("deu", "xx"))
}

func TestLoadMappingErrors(t *testing.T) {
	_, err := LoadMapping(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = LoadMapping(writeMapping(t, `{broken`))
	assert.Error(t, err)
}
