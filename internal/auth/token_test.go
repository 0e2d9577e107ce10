package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/AlbertoOrlando/travel-journal-app/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func newTestManager() *TokenManager {
	return NewTokenManager(testSecret, "travelog-api", "travelog-client")
}

func signClaims(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func baseClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub": "42",
		"iss": "travelog-api",
		"aud": "travelog-client",
		"exp": now.Add(time.Hour).Unix(),
		"iat": now.Unix(),
	}
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	m := newTestManager()

	token, err := m.Issue(42, time.Hour)
	require.NoError(t, err)

	userID, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestTokenManager_IssueSetsExpiry(t *testing.T) {
	m := newTestManager()
	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	token, err := m.Issue(7, 48*time.Hour)
	require.NoError(t, err)

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	require.NoError(t, err)
	exp, err := parsed.Claims.GetExpirationTime()
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(48*time.Hour).Unix(), exp.Unix())

	claims := parsed.Claims.(jwt.MapClaims)
	assert.NotEmpty(t, claims["jti"])
	assert.Equal(t, "7", claims["sub"])
}

func TestTokenManager_IssueRejectsZeroUser(t *testing.T) {
	_, err := newTestManager().Issue(0, time.Hour)
	assert.Error(t, err)
}

func TestTokenManager_VerifyRejects(t *testing.T) {
	m := newTestManager()

	expired := baseClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	noSub := baseClaims()
	delete(noSub, "sub")

	badSub := baseClaims()
	badSub["sub"] = "abc"

	zeroSub := baseClaims()
	zeroSub["sub"] = "0"

	wrongAud := baseClaims()
	wrongAud["aud"] = "someone-else"

	noExp := baseClaims()
	delete(noExp, "exp")

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"malformed", "malformed.token.here"},
		{"expired", signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), expired)},
		{"bad signature", signClaims(t, jwt.SigningMethodHS256, []byte("another-secret"), baseClaims())},
		{"wrong method", signClaims(t, jwt.SigningMethodHS512, []byte(testSecret), baseClaims())},
		{"none method", signClaims(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, baseClaims())},
		{"missing subject", signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), noSub)},
		{"non numeric subject", signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), badSub)},
		{"zero subject", signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), zeroSub)},
		{"wrong audience", signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), wrongAud)},
		{"missing expiry", signClaims(t, jwt.SigningMethodHS256, []byte(testSecret), noExp)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, err := m.Verify(tt.token)
			require.Error(t, err)
			assert.Zero(t, userID)

			var appErr *models.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, models.CodeUnauthorized, appErr.Code)
		})
	}
}
