package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rewear/internal/domain/entity"
	apperrors "rewear/pkg/errors"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.auth.Register(ctx, RegisterInput{Name: " Ada ", Email: "Ada@Example.com", Password: "secret123", Location: "Lyon"})
	require.NoError(t, err)
	assert.Equal(t, "Ada", res.User.Name)
	assert.Equal(t, "ada@example.com", res.User.Email)
	assert.Equal(t, 100, res.User.Points)
	assert.Equal(t, entity.RoleUser, res.User.Role)
	assert.True(t, res.User.IsActive)
	assert.Equal(t, entity.DefaultProfilePicture, res.User.ProfilePicture)
	assert.NotEqual(t, "secret123", res.User.PasswordHash)
	assert.Equal(t, "token-"+res.User.ID, res.Token)

	_, err = f.auth.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "other123"})
	requireCode(t, err, apperrors.CodeConflict)

	login, err := f.auth.Login(ctx, "ADA@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	_, err = f.auth.Login(ctx, "ada@example.com", "wrong")
	requireCode(t, err, apperrors.CodeUnauthorized)
	_, err = f.auth.Login(ctx, "nobody@example.com", "secret123")
	requireCode(t, err, apperrors.CodeUnauthorized)
}

func TestBannedUsersCannotAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.user(t, "admin", 100)
	victim := f.user(t, "victim", 100)

	user, err := f.auth.Authenticate(ctx, "token-"+victim.ID)
	require.NoError(t, err)
	assert.Equal(t, victim.ID, user.ID)

	_, err = f.admin.ToggleBan(ctx, admin.ID, victim.ID)
	require.NoError(t, err)

	_, err = f.auth.Authenticate(ctx, "token-"+victim.ID)
	requireCode(t, err, apperrors.CodeForbidden)
	_, err = f.auth.Login(ctx, "victim@example.com", "secret123")
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = f.auth.Authenticate(ctx, "garbage")
	requireCode(t, err, apperrors.CodeUnauthorized)
	_, err = f.auth.Authenticate(ctx, "token-deleted")
	requireCode(t, err, apperrors.CodeUnauthorized)
}
