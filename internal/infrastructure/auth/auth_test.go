package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"rewear/internal/domain/entity"
)

func TestJWTRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := NewJWTProvider("test-secret", time.Hour)
	user := &entity.User{ID: "user-1", Role: entity.RoleUser}

	token, err := p.IssueToken(ctx, user)
	require.NoError(t, err)

	uid, err := p.VerifyToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", uid)
}

func TestJWTRejectsForeignAndExpiredTokens(t *testing.T) {
	ctx := context.Background()
	user := &entity.User{ID: "user-1", Role: entity.RoleUser}

	other := NewJWTProvider("other-secret", time.Hour)
	token, err := other.IssueToken(ctx, user)
	require.NoError(t, err)

	p := NewJWTProvider("test-secret", time.Hour)
	_, err = p.VerifyToken(ctx, token)
	assert.Error(t, err)

	expired := NewJWTProvider("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err = expired.IssueToken(ctx, user)
	require.NoError(t, err)
	_, err = p.VerifyToken(ctx, token)
	assert.Error(t, err)

	_, err = p.VerifyToken(ctx, "not-a-token")
	assert.Error(t, err)
}

func TestJWTRejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{UserID: "user-1", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTProvider("test-secret", time.Hour).VerifyToken(context.Background(), token)
	assert.Error(t, err)
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)
	assert.NoError(t, h.Compare(hash, "secret123"))
	assert.Error(t, h.Compare(hash, "secret124"))

	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
}
