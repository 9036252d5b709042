package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivePSUTDeterminism(t *testing.T) {
	first, err := DerivePSUT("9256", "rp-a")
	require.NoError(t, err)
	second, err := DerivePSUT("9256", "rp-a")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDerivePSUTUnlinkability(t *testing.T) {
	a, err := DerivePSUT("9256", "rp-a")
	require.NoError(t, err)
	b, err := DerivePSUT("9256", "rp-b")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDerivePSUTDoesNotEchoInputs(t *testing.T) {
	psut, err := DerivePSUT("9256", "rp-a")
	require.NoError(t, err)
	assert.NotContains(t, psut, "9256")
	// 32-byte digest, base64url without padding.
	assert.Len(t, psut, 43)
}

func TestDerivePSUTRejectsEmptyInputs(t *testing.T) {
	_, err := DerivePSUT("", "rp-a")
	assert.Error(t, err)
	_, err = DerivePSUT("9256", "")
	assert.Error(t, err)
}
