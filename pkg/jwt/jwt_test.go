package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/supermarket-console/pkg/jwt"
)

const testSecret = "test-secret-key-for-unit-tests"

func TestGenerateAndParse_ConRole(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, "u-1", "ana@example.com", "admin", "test", 60)
	require.NoError(t, err)

	claims, err := pkgjwt.Parse(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestParse_TokenExpirado_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, "u-1", "ana@example.com", "admin", "test", -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(testSecret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestParse_SecretIncorrecto_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, "u-1", "ana@example.com", "admin", "test", 60)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret", tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio_RetornaError(t *testing.T) {
	_, err := pkgjwt.Generate("", "u-1", "ana@example.com", "admin", "test", 60)
	assert.Error(t, err)
}

func TestExpiresAt(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, "u-1", "ana@example.com", "admin", "test", 30)
	require.NoError(t, err)

	exp, ok := pkgjwt.ExpiresAt(tok)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), exp, 5*time.Second)

	_, ok = pkgjwt.ExpiresAt("opaque-token")
	assert.False(t, ok, "un token opaco no tiene exp legible")
}
