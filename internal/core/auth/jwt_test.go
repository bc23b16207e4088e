package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course-management-api/internal/domain"
)

func newTestJWTer() *JWTer {
	return &JWTer{Secret: []byte("test-secret"), Issuer: "course-api", TTL: time.Hour}
}

func TestIssueParse_RoundTrip(t *testing.T) {
	j := newTestJWTer()
	tok, err := j.Issue(42, domain.RoleInstructor, "Bob")
	require.NoError(t, err)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, uint(42), c.UID)
	assert.Equal(t, domain.RoleInstructor, c.Role)
	assert.Equal(t, "Bob", c.Name)

	id := c.Identity()
	assert.True(t, id.Is(domain.RoleInstructor))
	assert.False(t, id.Is(domain.RoleAdmin))
}

func TestParse_Expired(t *testing.T) {
	j := newTestJWTer()
	issuedAt := time.Now().Add(-2 * time.Hour)
	j.now = func() time.Time { return issuedAt }
	tok, err := j.Issue(1, domain.RoleUser, "Alice")
	require.NoError(t, err)

	j.now = nil
	_, err = j.Parse(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParse_WrongSecret(t *testing.T) {
	tok, err := newTestJWTer().Issue(1, domain.RoleUser, "Alice")
	require.NoError(t, err)

	other := newTestJWTer()
	other.Secret = []byte("another-secret")
	_, err = other.Parse(tok)
	assert.Error(t, err)
}

func TestParse_WrongIssuer(t *testing.T) {
	tok, err := newTestJWTer().Issue(1, domain.RoleUser, "Alice")
	require.NoError(t, err)

	other := newTestJWTer()
	other.Issuer = "someone-else"
	_, err = other.Parse(tok)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestParse_RejectsOtherAlg(t *testing.T) {
	j := newTestJWTer()
	claims := Claims{UID: 1, Role: domain.RoleAdmin, RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    j.Issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(j.Secret)
	require.NoError(t, err)

	_, err = j.Parse(tok)
	assert.Error(t, err)
}

func TestIssue_InvalidRole(t *testing.T) {
	_, err := newTestJWTer().Issue(1, domain.Role(0), "x")
	assert.Error(t, err)
}

func TestParse_Garbage(t *testing.T) {
	_, err := newTestJWTer().Parse("not.a.token")
	assert.Error(t, err)
}
