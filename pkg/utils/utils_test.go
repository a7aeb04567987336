package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTripCarriesRole(t *testing.T) {
	SetSecret("test-secret")
	SetExpiration(time.Hour)

	token, expiresAt, err := GenerateToken("u-1", "a@b.c", "mentor")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "mentor", claims.Role)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	SetSecret("one")
	token, _, err := GenerateToken("u-1", "a@b.c", "student")
	require.NoError(t, err)

	SetSecret("two")
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hashed, err := HashPassword("s3cret-pass")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret-pass", hashed)
	assert.True(t, CheckPassword(hashed, "s3cret-pass"))
	assert.False(t, CheckPassword(hashed, "wrong"))
}

func TestClaimsFromContext(t *testing.T) {
	_, ok := ClaimsFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithClaims(context.Background(), &UserClaims{UserID: "u"})
	claims, ok := ClaimsFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u", claims.UserID)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "my-cv-final", Slugify("  My CV (final)!"))
	assert.Equal(t, "", Slugify("***"))
}
