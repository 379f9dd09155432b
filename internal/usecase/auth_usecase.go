package usecase

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/xavierca1/ecold-outreach/internal/entity"
)

var errInvalidCredentials = &DomainError{Code: CodeUnauthorized, Message: "invalid email or password"}

type AuthUseCase struct {
	Users  entity.UserRepositoryInterface
	Tokens TokenIssuer
	Hasher PasswordHasher
	Logger *zap.Logger
}

func NewAuthUseCase(users entity.UserRepositoryInterface, tokens TokenIssuer, hasher PasswordHasher, logger *zap.Logger) *AuthUseCase {
	return &AuthUseCase{Users: users, Tokens: tokens, Hasher: hasher, Logger: logger}
}

func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*AuthOutput, error) {
	if errs := ValidateRegisterInput(input); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	hash, err := uc.Hasher.Hash(input.Password)
	if err != nil {
		return nil, &TechnicalError{Code: "HASH_ERROR", Message: "failed to hash password", Err: err}
	}

	user := entity.NewUser(input.Email, input.Name, hash)
	if err := uc.Users.Create(ctx, user); err != nil {
		if errors.Is(err, entity.ErrEmailAlreadyExists) {
			return nil, &DomainError{Code: CodeConflict, Message: "email already registered", Err: err}
		}
		return nil, databaseError("create user", err)
	}

	token, err := uc.Tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, &TechnicalError{Code: "TOKEN_ERROR", Message: "failed to issue token", Err: err}
	}

	uc.Logger.Info("user registered", zap.String("user_id", user.ID))
	return &AuthOutput{Token: token, User: user}, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, input LoginInput) (*AuthOutput, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, errInvalidCredentials
	}

	user, err := uc.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, databaseError("find user", err)
	}
	if err := uc.Hasher.Compare(user.PasswordHash, input.Password); err != nil {
		return nil, errInvalidCredentials
	}

	token, err := uc.Tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, &TechnicalError{Code: "TOKEN_ERROR", Message: "failed to issue token", Err: err}
	}
	return &AuthOutput{Token: token, User: user}, nil
}
