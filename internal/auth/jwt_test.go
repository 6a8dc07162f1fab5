package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-chars-long"

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func newTestTokens(t *testing.T) (*TokenService, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	s, err := NewTokenService(testSecret, WithClock(clock.Now))
	require.NoError(t, err)
	return s, clock
}

func TestNewTokenService_EmptySecret(t *testing.T) {
	s, err := NewTokenService("")
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestIssueValidate_RoundTrip(t *testing.T) {
	s, clock := newTestTokens(t)

	tests := []struct {
		name   string
		userID int64
		email  string
	}{
		{"regular", 1, "jane@example.com"},
		{"large id", 9223372036854775807, "big@example.com"},
		{"empty email", 42, ""},
		{"unicode email", 7, "用户@example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, exp, err := s.Issue(tt.userID, tt.email, time.Hour)
			require.NoError(t, err)
			assert.Equal(t, clock.t.Add(time.Hour), exp)
			assert.Len(t, strings.Split(token, "."), 3)

			claims, err := s.Validate(token)
			require.NoError(t, err)
			assert.Equal(t, tt.userID, claims.UserID)
			assert.Equal(t, tt.email, claims.Email)
			assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
		})
	}
}

func TestValidate_ExpiryBoundary(t *testing.T) {
	s, clock := newTestTokens(t)
	issuedAt := clock.t

	token, _, err := s.Issue(1, "a@example.com", 24*time.Hour)
	require.NoError(t, err)

	clock.t = issuedAt.Add(24*time.Hour - time.Second)
	_, err = s.Validate(token)
	require.NoError(t, err)

	clock.t = issuedAt.Add(24 * time.Hour)
	_, err = s.Validate(token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	clock.t = issuedAt.Add(48 * time.Hour)
	_, err = s.Validate(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidate_AlteredSignature(t *testing.T) {
	s, _ := newTestTokens(t)

	token, _, err := s.Issue(1, "a@example.com", time.Hour)
	require.NoError(t, err)

	dot := strings.LastIndex(token, ".")
	head, sig := token[:dot+1], token[dot+1:]

	// the final character carries padding bits, so it is left alone
	for i := 0; i < len(sig)-1; i++ {
		replacement := byte('A')
		if sig[i] == 'A' {
			replacement = 'B'
		}
		tampered := head + sig[:i] + string(replacement) + sig[i+1:]

		_, err := s.Validate(tampered)
		require.ErrorIs(t, err, ErrTokenSignatureInvalid, "position %d", i)
	}
}

func TestValidate_TamperedPayload(t *testing.T) {
	s, _ := newTestTokens(t)

	victim, _, err := s.Issue(1, "a@example.com", time.Hour)
	require.NoError(t, err)
	attacker, _, err := s.Issue(2, "b@example.com", time.Hour)
	require.NoError(t, err)

	v := strings.Split(victim, ".")
	a := strings.Split(attacker, ".")
	spliced := v[0] + "." + a[1] + "." + v[2]

	_, err = s.Validate(spliced)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestValidate_WrongSecret(t *testing.T) {
	s, clock := newTestTokens(t)
	other, err := NewTokenService("another-secret", WithClock(clock.Now))
	require.NoError(t, err)

	token, _, err := other.Issue(1, "a@example.com", time.Hour)
	require.NoError(t, err)

	_, err = s.Validate(token)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestValidate_WrongAlgorithm(t *testing.T) {
	s, clock := newTestTokens(t)

	claims := &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
		},
	}

	hs384, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = s.Validate(hs384)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = s.Validate(none)
	assert.ErrorIs(t, err, ErrTokenSignatureInvalid)
}

func TestValidate_Malformed(t *testing.T) {
	s, _ := newTestTokens(t)

	for _, tok := range []string{"", "not-a-jwt", "not.a.jwt", "a.b"} {
		_, err := s.Validate(tok)
		assert.ErrorIs(t, err, ErrTokenMalformed, "token %q", tok)
	}

	// signed correctly but without an expiry
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: 1}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = s.Validate(noExp)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestIssue_TokensAreUnique(t *testing.T) {
	s, _ := newTestTokens(t)

	t1, _, err := s.Issue(1, "a@example.com", time.Hour)
	require.NoError(t, err)
	t2, _, err := s.Issue(1, "a@example.com", time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, t1, t2)
}
