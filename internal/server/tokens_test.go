package server

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := newTokenIssuer("secret", time.Hour)
	id := uuid.New()

	tok, err := issuer.Issue(id)
	require.NoError(t, err)

	got, err := issuer.Resolve(tok)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestTokenExpired(t *testing.T) {
	issuer := newTokenIssuer("secret", time.Hour)
	issuer.ttl = -time.Minute

	tok, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	_, err = issuer.Resolve(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenWrongSecret(t *testing.T) {
	tok, err := newTokenIssuer("secret-a", time.Hour).Issue(uuid.New())
	require.NoError(t, err)

	_, err = newTokenIssuer("secret-b", time.Hour).Resolve(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenTampered(t *testing.T) {
	issuer := newTokenIssuer("secret", time.Hour)
	tok, err := issuer.Issue(uuid.New())
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	_, err = issuer.Resolve(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenMalformed(t *testing.T) {
	issuer := newTokenIssuer("secret", time.Hour)
	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := issuer.Resolve(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tok)
	}
}

func TestTokenDefaultTTL(t *testing.T) {
	issuer := newTokenIssuer("secret", 0)
	assert.Equal(t, time.Hour, issuer.ttl)
}
