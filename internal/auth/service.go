package auth

import (
	"context"
	"errors"

	"github.com/ayush/personal-library/internal/apperr"
	"github.com/ayush/personal-library/internal/models"
	"github.com/ayush/personal-library/internal/store"
	"github.com/ayush/personal-library/internal/validation"
)

// Service implements registration, login and profile lookup.
type Service struct {
	creds  *CredentialStore
	users  UserStore
	tokens *TokenService
}

func NewService(creds *CredentialStore, users UserStore, tokens *TokenService) *Service {
	return &Service{creds: creds, users: users, tokens: tokens}
}

// Register validates req, creates the user and issues a token for it.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	req, err := validation.Register(req)
	if err != nil {
		return nil, err
	}
	user, err := s.creds.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.respond(user)
}

// Login validates req and issues a token when the credentials match.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	req, err := validation.Login(req)
	if err != nil {
		return nil, err
	}
	user, err := s.creds.FindByCredentials(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.respond(user)
}

// Profile returns the user for a verified id, without the password.
func (s *Service) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, apperr.Internal(err)
	}
	user.Password = ""
	return user, nil
}

func (s *Service) respond(user *models.User) (*models.AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{User: user.Summary(), Token: token}, nil
}
