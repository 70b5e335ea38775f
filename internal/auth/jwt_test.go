package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	user := &User{ID: uuid.New(), Role: RoleRHUStaff}

	token, err := issuer.Issue(user)
	require.NoError(t, err)

	claims, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, RoleRHUStaff, claims.Role)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("secret-a", time.Hour).Issue(&User{ID: uuid.New(), Role: RoleAdmin})
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret-b", time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Nanosecond)
	token, err := issuer.Issue(&User{ID: uuid.New(), Role: RoleAdmin})
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = issuer.Verify(token)
	assert.Error(t, err)
}
