package crypto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	t.Parallel()

	m, err := NewJWTManager("secret")
	require.NoError(t, err)

	token, err := m.CreateToken("user-1", TokenOptions{Name: "Ada", Role: "Founder"})
	require.NoError(t, err)

	claims, err := m.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "Ada", claims.Name)
	require.Equal(t, "Founder", claims.Role)
	require.Nil(t, claims.ExpiresAt)
}

func TestJWTManager_SameSecretSameKey(t *testing.T) {
	t.Parallel()

	a, err := NewJWTManager("shared")
	require.NoError(t, err)
	b, err := NewJWTManager("shared")
	require.NoError(t, err)
	other, err := NewJWTManager("different")
	require.NoError(t, err)

	token, err := a.CreateToken("u", TokenOptions{})
	require.NoError(t, err)

	_, err = b.VerifyToken(token)
	require.NoError(t, err)
	_, err = other.VerifyToken(token)
	require.Error(t, err)
}

func TestJWTManager_Expiry(t *testing.T) {
	t.Parallel()

	m, err := NewJWTManager("secret")
	require.NoError(t, err)

	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }
	token, err := m.CreateToken("u", TokenOptions{TTL: time.Hour})
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(30 * time.Minute) }
	_, err = m.VerifyToken(token)
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = m.VerifyToken(token)
	require.Error(t, err)
}

func TestJWTManager_RejectsEmptyInputs(t *testing.T) {
	t.Parallel()

	_, err := NewJWTManager("")
	require.Error(t, err)

	m, err := NewJWTManager("secret")
	require.NoError(t, err)
	_, err = m.CreateToken("", TokenOptions{})
	require.ErrorIs(t, err, ErrEmptySubject)

	_, err = m.VerifyToken("not-a-jwt")
	require.Error(t, err)
}
