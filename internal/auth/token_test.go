package auth

import (
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerify_Success(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("super-secret", time.Hour)
	tok, exp, err := tm.GenerateToken("a@x.com", "A")
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	identity, err := tm.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", identity.Email)
	require.Equal(t, "A", identity.Name)
	require.Equal(t, exp.Unix(), identity.ExpiresAt.Unix())
	require.False(t, identity.IssuedAt.IsZero())
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("secret", time.Minute)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, _, err := tm.GenerateToken("u@x.com", "U")
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.Verify(tok)
	require.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, _, err := NewTokenManager("right-secret", time.Hour).GenerateToken("u@x.com", "U")
	require.NoError(t, err)

	_, err = NewTokenManager("wrong-secret", time.Hour).Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	_, err := NewTokenManager("k", time.Hour).Verify("not.a.jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := &Claims{
		Email: "u@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = NewTokenManager("k", time.Hour).Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_RequiresExpiry(t *testing.T) {
	t.Parallel()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Email: "u@x.com"}).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = NewTokenManager("k", time.Hour).Verify(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenManager_DefaultsTTL(t *testing.T) {
	t.Parallel()

	tm := NewTokenManager("k", 0)
	require.Equal(t, time.Hour, tm.ttl)
}

func TestTokenCarriesOnlyIdentityClaims(t *testing.T) {
	t.Parallel()

	tok, _, err := NewTokenManager("k", time.Hour).GenerateToken("u@x.com", "U")
	require.NoError(t, err)
	require.Equal(t, 3, len(strings.Split(tok, ".")))

	parsed, _, err := jwt.NewParser().ParseUnverified(tok, jwt.MapClaims{})
	require.NoError(t, err)
	mc := parsed.Claims.(jwt.MapClaims)
	require.Equal(t, "u@x.com", mc["email"])
	require.Equal(t, "U", mc["name"])
	require.NotContains(t, mc, "password")
}
