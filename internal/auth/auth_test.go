package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	token, err := m.Generate(42)
	require.NoError(t, err)

	id, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestValidateRejectsExpired(t *testing.T) {
	m := NewTokenManager("secret", time.Minute)
	issued := time.Now().Add(-2 * time.Hour)
	m.now = func() time.Time { return issued }

	token, err := m.Generate(7)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Validate(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	token, err := NewTokenManager("other", time.Hour).Generate(7)
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour).Validate(token)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := NewTokenManager("secret", time.Hour).Validate("not.a.token")
	assert.Error(t, err)
}

func TestValidateRejectsNoneAlg(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": 1,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour).Validate(s)
	assert.Error(t, err)
}

func TestRoleOrder(t *testing.T) {
	assert.True(t, RoleUser < RoleMod && RoleMod < RoleAdmin)

	assert.False(t, RoleUser.CanModerate())
	assert.True(t, RoleMod.CanModerate())
	assert.False(t, RoleMod.CanAdminister())
	assert.True(t, RoleAdmin.CanModerate())
	assert.True(t, RoleAdmin.CanAdminister())
	assert.False(t, Role(0).AtLeast(RoleUser))
}

func TestParseRole(t *testing.T) {
	tests := map[string]Role{"USER": RoleUser, "mod": RoleMod, " Admin ": RoleAdmin}
	for in, want := range tests {
		got, err := ParseRole(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
		assert.Equal(t, want, mustParse(t, got.String()))
	}

	_, err := ParseRole("root")
	assert.Error(t, err)
}

func mustParse(t *testing.T, s string) Role {
	t.Helper()
	r, err := ParseRole(s)
	require.NoError(t, err)
	return r
}
