package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-directory"

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims *Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims(expiresIn time.Duration) *Claims {
	now := time.Now().UTC()
	return &Claims{
		UserID: "user-1",
		Email:  "user@example.com",
		Role:   "manager",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			Issuer:    "user-service",
		},
	}
}

func TestValidateAccessToken_Valid(t *testing.T) {
	v := NewValidator(testSecret)
	token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(time.Hour))

	claims, err := v.ValidateAccessToken(token)

	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "manager", claims.Role)
}

func TestValidateAccessToken_FallsBackToSubject(t *testing.T) {
	v := NewValidator(testSecret)
	c := validClaims(time.Hour)
	c.UserID = ""
	c.Subject = "subject-7"

	claims, err := v.ValidateAccessToken(signToken(t, jwt.SigningMethodHS256, []byte(testSecret), c))

	require.NoError(t, err)
	assert.Equal(t, "subject-7", claims.UserID)
}

func TestValidateAccessToken_Rejects(t *testing.T) {
	v := NewValidator(testSecret)

	noUser := validClaims(time.Hour)
	noUser.UserID, noUser.Subject = "", ""

	noExpiry := validClaims(time.Hour)
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name  string
		token string
	}{
		{"expired", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(-time.Minute))},
		{"wrong secret", signToken(t, jwt.SigningMethodHS256, []byte("other-secret"), validClaims(time.Hour))},
		{"hs512", signToken(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims(time.Hour))},
		{"alg none", signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims(time.Hour))},
		{"missing user", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), noUser)},
		{"missing expiry", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), noExpiry)},
		{"garbage", "not.a.jwt"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := v.ValidateAccessToken(tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestTokenValidator_Adapter(t *testing.T) {
	v := NewValidator(testSecret)
	validate := v.TokenValidator()

	claims, err := validate(signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims(time.Hour)))

	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}
