package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/personal-library/internal/apperr"
	"github.com/ayush/personal-library/internal/models"
	"github.com/ayush/personal-library/internal/store"
)

// Uniform messages; they never say which credential was wrong.
const (
	msgUserExists         = "User already exists"
	msgInvalidCredentials = "Invalid login credentials"
)

// UserStore defines the interface for user persistence. Implementations
// enforce uniqueness of username and email and report violations as
// store.ErrDuplicate; missing users are store.ErrNotFound.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	UserExists(ctx context.Context, username, email string) (bool, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// CredentialStore owns password hashing. The plaintext is hashed exactly
// once, in Register; no other path writes the password field.
type CredentialStore struct {
	users     UserStore
	cost      int
	dummyHash []byte
}

func NewCredentialStore(users UserStore, cost int) (*CredentialStore, error) {
	// compared against when the email is unknown so both failure paths pay
	// the same hashing cost
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt cost %d: %w", cost, err)
	}
	return &CredentialStore{users: users, cost: cost, dummyHash: dummy}, nil
}

// Register persists a new user with a bcrypt-hashed password. The returned
// record has no password.
func (c *CredentialStore) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	exists, err := c.users.UserExists(ctx, username, email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if exists {
		return nil, apperr.Conflict(msgUserExists)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperr.Validation(apperr.FieldError{Field: "password", Message: "Password must be at most 72 bytes"})
		}
		return nil, apperr.Internal(err)
	}

	user, err := c.users.CreateUser(ctx, &models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
	})
	if err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict(msgUserExists)
		}
		return nil, apperr.Internal(err)
	}
	user.Password = ""
	return user, nil
}

// FindByCredentials returns the user whose email and password match.
func (c *CredentialStore) FindByCredentials(ctx context.Context, email, password string) (*models.User, error) {
	user, err := c.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			bcrypt.CompareHashAndPassword(c.dummyHash, []byte(password))
			return nil, apperr.Unauthenticated(msgInvalidCredentials)
		}
		return nil, apperr.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, apperr.Unauthenticated(msgInvalidCredentials)
	}
	user.Password = ""
	return user, nil
}
