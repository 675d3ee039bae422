package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/warungpos/warungpos/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo   *Repository
	tokens *TokenStore
}

// NewService constructs a new Service.
func NewService(repo *Repository, tokens *TokenStore) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout revokes the presented bearer token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}
