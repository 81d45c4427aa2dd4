package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken("64b7f0c2a1b2c3d4e5f60718", "officer@uni.test", "admin", "medical_officer", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "64b7f0c2a1b2c3d4e5f60718", claims.UserID)
	assert.Equal(t, "officer@uni.test", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "medical_officer", claims.AdminType)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("64b7f0c2a1b2c3d4e5f60718", "s@uni.test", "student", "", "secret", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token, "other")
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken("64b7f0c2a1b2c3d4e5f60718", "s@uni.test", "student", "", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, "secret")
	assert.Error(t, err)
}
