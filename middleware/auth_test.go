package middleware

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitual/models"
)

const secret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	user := &models.User{ID: 42, Username: "alice"}

	token, err := GenerateToken(user, secret, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestParseToken_Rejects(t *testing.T) {
	user := &models.User{ID: 1, Username: "alice"}

	expired, err := GenerateToken(user, secret, -time.Minute)
	require.NoError(t, err)
	valid, err := GenerateToken(user, secret, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		secret  string
		message string
	}{
		{"expired", expired, secret, "Token expired"},
		{"wrong secret", valid, "other-secret", "Invalid token"},
		{"garbage", "not-a-token", secret, "Invalid token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.token, tt.secret)
			var fe *fiber.Error
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, fiber.StatusUnauthorized, fe.Code)
			assert.Equal(t, tt.message, fe.Message)
		})
	}
}
