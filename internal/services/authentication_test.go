package services

import (
	"testing"

	"dailyrewards/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticationRoundTrip(t *testing.T) {
	authentication, err := NewAuthentication("local-dev-secret")
	require.NoError(t, err)

	token, err := authentication.CreateToken(&models.UserFromAuth{ID: 42, Username: "alice"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	user, err := authentication.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "alice", user.Username)
}

func TestAuthenticationRejectsForeignSecret(t *testing.T) {
	minter, err := NewAuthentication("secret-a")
	require.NoError(t, err)
	verifier, err := NewAuthentication("secret-b")
	require.NoError(t, err)

	token, err := minter.CreateToken(&models.UserFromAuth{ID: 1, Username: "bob"})
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.Error(t, err)
}

func TestAuthenticationRejectsGarbage(t *testing.T) {
	authentication, err := NewAuthentication("local-dev-secret")
	require.NoError(t, err)

	_, err = authentication.Validate("not-a-token")
	assert.Error(t, err)
}
