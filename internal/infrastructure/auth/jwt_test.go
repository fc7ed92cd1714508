package auth

import (
	"testing"
	"time"

	"github.com/farmerp/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-chars"

func newTestVerifier() *TokenVerifier {
	return NewTokenVerifier(config.JWTConfig{Secret: testSecret, Issuer: "farmerp"})
}

func sign(t *testing.T, claims jwt.Claims, method jwt.SigningMethod, key any) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestTokenVerifier_IssueAndVerify(t *testing.T) {
	v := newTestVerifier()
	firmID, userID := uuid.New(), uuid.New()

	token, err := v.Issue(firmID, userID, time.Hour)
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)

	gotFirm, err := claims.FirmUUID()
	require.NoError(t, err)
	gotUser, err := claims.UserUUID()
	require.NoError(t, err)
	assert.Equal(t, firmID, gotFirm)
	assert.Equal(t, userID, gotUser)
	assert.Equal(t, "farmerp", claims.Issuer)
}

func TestTokenVerifier_Rejects(t *testing.T) {
	v := newTestVerifier()
	now := time.Now()
	valid := func() *Claims {
		return &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "farmerp",
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
			FirmID: uuid.NewString(),
			UserID: uuid.NewString(),
		}
	}

	tests := []struct {
		name  string
		token func() string
		want  error
	}{
		{
			name:  "garbage",
			token: func() string { return "not.a.token" },
			want:  ErrInvalidToken,
		},
		{
			name: "wrong secret",
			token: func() string {
				return sign(t, valid(), jwt.SigningMethodHS256, []byte("another-secret-key-of-32-chars!!"))
			},
			want: ErrInvalidToken,
		},
		{
			name:  "wrong algorithm",
			token: func() string { return sign(t, valid(), jwt.SigningMethodHS512, []byte(testSecret)) },
			want:  ErrInvalidToken,
		},
		{
			name: "expired",
			token: func() string {
				c := valid()
				c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
				return sign(t, c, jwt.SigningMethodHS256, []byte(testSecret))
			},
			want: ErrExpiredToken,
		},
		{
			name: "not yet valid",
			token: func() string {
				c := valid()
				c.NotBefore = jwt.NewNumericDate(now.Add(time.Hour))
				return sign(t, c, jwt.SigningMethodHS256, []byte(testSecret))
			},
			want: ErrTokenNotYetValid,
		},
		{
			name: "foreign issuer",
			token: func() string {
				c := valid()
				c.Issuer = "someone-else"
				return sign(t, c, jwt.SigningMethodHS256, []byte(testSecret))
			},
			want: ErrInvalidToken,
		},
		{
			name: "missing firm",
			token: func() string {
				c := valid()
				c.FirmID = ""
				return sign(t, c, jwt.SigningMethodHS256, []byte(testSecret))
			},
			want: ErrMissingFirmID,
		},
		{
			name: "missing user",
			token: func() string {
				c := valid()
				c.UserID = ""
				return sign(t, c, jwt.SigningMethodHS256, []byte(testSecret))
			},
			want: ErrMissingUserID,
		},
		{
			name: "firm is not a uuid",
			token: func() string {
				c := valid()
				c.FirmID = "firm-1"
				return sign(t, c, jwt.SigningMethodHS256, []byte(testSecret))
			},
			want: ErrInvalidClaims,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestTokenVerifier_WithoutIssuerAcceptsAnyIssuer(t *testing.T) {
	v := NewTokenVerifier(config.JWTConfig{Secret: testSecret})
	other := NewTokenVerifier(config.JWTConfig{Secret: testSecret, Issuer: "identity"})

	token, err := other.Issue(uuid.New(), uuid.New(), time.Minute)
	require.NoError(t, err)

	_, err = v.Verify(token)
	assert.NoError(t, err)
}
