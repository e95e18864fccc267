package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/Ubicaciones-api/pkg/jwt"
)

const (
	secret    = "test-secret-key-for-unit-tests"
	userID    = "00000000-0000-0000-0000-000000000001"
	companyID = "00000000-0000-0000-0000-000000000002"
	issuer    = "ubicaciones-api-test"
)

func TestGenerateYParse_ConRole(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, userID, companyID, "bodeguero", issuer, 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	gotUser, gotCompany, role, err := pkgjwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, userID, gotUser)
	assert.Equal(t, companyID, gotCompany)
	assert.Equal(t, "bodeguero", role)
}

func TestParseClaims_CamposRegistrados(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, userID, companyID, "admin", issuer, 60)
	require.NoError(t, err)

	claims, err := pkgjwt.ParseClaims(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, issuer, claims.Issuer)
	assert.Equal(t, userID, claims.Subject)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestParse_TokenExpirado(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, userID, companyID, "admin", issuer, -1)
	require.NoError(t, err)

	_, _, _, err = pkgjwt.Parse(secret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, userID, companyID, "admin", issuer, 60)
	require.NoError(t, err)

	_, _, _, err = pkgjwt.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err, "secret incorrecto debe invalidar el token")
}

func TestSecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", userID, companyID, "admin", issuer, 60)
	assert.ErrorIs(t, err, pkgjwt.ErrEmptySecret)

	_, err = pkgjwt.ParseClaims("", "cualquier.token.valor")
	assert.ErrorIs(t, err, pkgjwt.ErrEmptySecret)
}
