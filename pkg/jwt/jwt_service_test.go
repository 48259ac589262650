package jwt

import (
	"testing"

	"github.com/PavelDubrovin93/foodgram/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewJWTService()

	token := svc.GenerateTokenUser(42)
	require.NotEmpty(t, token)

	userID, err := svc.GetUserIDByToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestGetUserIDByToken_Invalid(t *testing.T) {
	svc := NewJWTService()

	_, err := svc.GetUserIDByToken("not-a-token")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}
