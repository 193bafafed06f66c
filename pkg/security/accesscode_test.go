package security

import (
	"testing"

	"github.com/rmarasigan/printshop-pos-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastParams() config.AccessCodeConfig {
	return config.AccessCodeConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func TestHashAndVerifyAccessCode(t *testing.T) {
	encoded, err := HashAccessCode("050123", fastParams())
	require.NoError(t, err)

	ok, err := VerifyAccessCode("050123", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyAccessCode("999999", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashAccessCodeRejectsEmpty(t *testing.T) {
	_, err := HashAccessCode("", fastParams())
	require.Error(t, err)
}

func TestVerifyAccessCodeRejectsMalformedHash(t *testing.T) {
	_, err := VerifyAccessCode("050123", "not-a-hash")
	assert.ErrorIs(t, err, ErrInvalidHash)
}
