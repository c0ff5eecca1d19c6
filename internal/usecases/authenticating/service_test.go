package authenticating

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/ads-dashboard-api/internal/config"
	"golang.org/x/crypto/bcrypt"
)

func authConfig(t *testing.T, password string) *config.Config {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Auth.Secret = "segredo-de-teste"
	cfg.Auth.AdminUser = "admin"
	cfg.Auth.AdminPasswordHash = string(hash)
	return cfg
}

func TestService_LoginAndValidateToken(t *testing.T) {
	service := NewService(authConfig(t, "senha-forte"))

	token, err := service.Login("admin", "senha-forte")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestService_LoginNormalizesUsername(t *testing.T) {
	service := NewService(authConfig(t, "senha-forte"))

	token, err := service.Login("  ADMIN  ", "senha-forte")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestService_LoginRejectsBadCredentials(t *testing.T) {
	service := NewService(authConfig(t, "senha-forte"))

	_, err := service.Login("admin", "senha-errada")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login("desconhecido", "senha-forte")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login("", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestService_ValidateTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewService(authConfig(t, "senha-forte"))

	token, err := issuer.Login("admin", "senha-forte")
	require.NoError(t, err)

	other := authConfig(t, "senha-forte")
	other.Auth.Secret = "outro-segredo"
	validator := NewService(other)

	_, err = validator.ValidateToken(token)
	assert.Error(t, err)
}

func TestService_ValidateTokenRejectsUnexpectedSigningMethod(t *testing.T) {
	service := NewService(authConfig(t, "senha-forte"))

	// Token assinado com "none" não passa na checagem de método HMAC
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.Error(t, err)
}
