package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_secret_key_1234567890"

func TestMaker_GenerateAndParse(t *testing.T) {
	maker := NewJWTMaker(testSecret, 15*time.Minute)

	tests := []struct {
		name     string
		username string
		role     string
	}{
		{name: "admin", username: "admin", role: "admin"},
		{name: "regular user", username: "alice", role: "user"},
		{name: "email as username", username: "bob@example.com", role: "user"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uid := uuid.New()
			token, err := maker.GenerateToken(tt.username, tt.role, uid)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)
			assert.Equal(t, tt.username, claims.Username)
			assert.Equal(t, tt.role, claims.Role)

			gotUID, err := claims.UserUID()
			require.NoError(t, err)
			assert.Equal(t, uid, gotUID)
			assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestMaker_ParseToken_Rejects(t *testing.T) {
	maker := NewJWTMaker(testSecret, 15*time.Minute)
	valid, err := maker.GenerateToken("alice", "user", uuid.New())
	require.NoError(t, err)

	expired, err := NewJWTMaker(testSecret, -time.Hour).GenerateToken("alice", "user", uuid.New())
	require.NoError(t, err)

	foreign, err := NewJWTMaker("other_secret", 15*time.Minute).GenerateToken("alice", "user", uuid.New())
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, CustomClaims{
		Username: "alice",
		Role:     "user",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, CustomClaims{
		Username:         "alice",
		RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString()},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := map[string]string{
		"empty":           "",
		"malformed":       "invalid.token.here",
		"tampered":        valid + "x",
		"expired":         expired,
		"wrong secret":    foreign,
		"missing subject": noSubject,
		"missing expiry":  noExpiry,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			claims, err := maker.ParseToken(token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestMaker_ParseToken_RejectsNoneAlg(t *testing.T) {
	maker := NewJWTMaker(testSecret, time.Hour)

	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, CustomClaims{
		Username: "mallory",
		Role:     "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = maker.ParseToken(token)
	assert.Error(t, err)
}
