package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"rewear/internal/domain/entity"
	"rewear/internal/domain/repository"
	"rewear/internal/domain/service"
	"rewear/pkg/errors"
	"rewear/pkg/logger"
)

type AuthUseCase struct {
	userRepo      repository.UserRepository
	identity      service.IdentityProvider
	hasher        PasswordHasher
	defaultPoints int
}

func NewAuthUseCase(
	userRepo repository.UserRepository,
	identity service.IdentityProvider,
	hasher PasswordHasher,
	defaultPoints int,
) *AuthUseCase {
	return &AuthUseCase{
		userRepo:      userRepo,
		identity:      identity,
		hasher:        hasher,
		defaultPoints: defaultPoints,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Location string
}

type AuthResult struct {
	User  *entity.User `json:"user"`
	Token string       `json:"token"`
}

func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, errors.Conflict("Email already registered")
	}
	if err != nil && !errors.Is(err, errors.CodeNotFound) {
		return nil, err
	}

	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Internal("Failed to hash password", err)
	}

	now := time.Now()
	user := &entity.User{
		ID:             uuid.New().String(),
		Name:           strings.TrimSpace(input.Name),
		Email:          email,
		PasswordHash:   hash,
		Role:           entity.RoleUser,
		IsActive:       true,
		Points:         uc.defaultPoints,
		Location:       strings.TrimSpace(input.Location),
		ProfilePicture: entity.DefaultProfilePicture,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.identity.RegisterIdentity(ctx, user, input.Password); err != nil {
		return nil, errors.Internal("Failed to register identity", err)
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		if remover, ok := uc.identity.(service.IdentityRemover); ok {
			if rmErr := remover.DeleteIdentity(ctx, user.ID); rmErr != nil {
				logger.Warn("failed to roll back identity for %s: %v", user.ID, rmErr)
			}
		}
		return nil, err
	}

	token, err := uc.identity.IssueToken(ctx, user)
	if err != nil {
		return nil, errors.Internal("Failed to generate authentication token", err)
	}

	logger.Info("registered user %s", user.ID)
	return &AuthResult{User: user, Token: token}, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := uc.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, errors.Unauthorized("Invalid credentials", nil)
		}
		return nil, err
	}

	if err := uc.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, errors.Unauthorized("Invalid credentials", nil)
	}

	if !user.IsActive {
		return nil, errors.Forbidden("Account has been deactivated", nil)
	}

	token, err := uc.identity.IssueToken(ctx, user)
	if err != nil {
		return nil, errors.Internal("Failed to generate authentication token", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Authenticate resolves a bearer token to an active user.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	uid, err := uc.identity.VerifyToken(ctx, token)
	if err != nil {
		return nil, errors.Unauthorized("Invalid or expired token", err)
	}

	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, errors.Unauthorized("User no longer exists", nil)
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, errors.Forbidden("Account has been deactivated", nil)
	}
	return user, nil
}

func (uc *AuthUseCase) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}
