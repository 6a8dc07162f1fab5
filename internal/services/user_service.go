package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/isdelr/postgate/internal/auth"
	"github.com/isdelr/postgate/internal/models"
	"github.com/isdelr/postgate/internal/repository"
	"github.com/isdelr/postgate/internal/slug"
	"github.com/rs/zerolog/log"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, username, password string, keepLoggedIn bool) (*LoginResult, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context, page, perPage int) (*UserPage, error)
	UpdateUser(ctx context.Context, id int64, username, email string) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// TokenIssuer signs identity tokens.
type TokenIssuer interface {
	Issue(userID int64, email string, validity time.Duration) (string, time.Time, error)
}

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// UserPage is one page of users.
type UserPage struct {
	Users    []models.User `json:"users"`
	Page     int           `json:"page"`
	NumPages int           `json:"num_pages"`
}

// UserService provides business logic for user management.
type UserService struct {
	users           repository.UserRepository
	hasher          auth.PasswordHasher
	tokens          TokenIssuer
	tokenTTL        time.Duration
	keepLoggedInTTL time.Duration

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService creates a new UserService.
func NewUserService(users repository.UserRepository, hasher auth.PasswordHasher, tokens TokenIssuer, tokenTTL, keepLoggedInTTL time.Duration) *UserService {
	return &UserService{
		users:           users,
		hasher:          hasher,
		tokens:          tokens,
		tokenTTL:        tokenTTL,
		keepLoggedInTTL: keepLoggedInTTL,
	}
}

// Register creates a new, inactive account. The username is stored in slug form.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = slug.Normalize(username, 0)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}
	email, err := parseEmail(email)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}

	if err := s.ensureAvailable(ctx, 0, username, email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	return s.users.FindByID(ctx, user.ID)
}

// Login checks credentials and issues a bearer token. Inactive accounts can
// log in; the gateway refuses them when they act.
func (s *UserService) Login(ctx context.Context, username, password string, keepLoggedIn bool) (*LoginResult, error) {
	user, err := s.users.FindByField(ctx, repository.UserUsername, slug.Normalize(username, 0))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// spend the same hashing time as a wrong password
			s.hasher.Verify(password, s.unknownUserHash())
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	ttl := s.tokenTTL
	if keepLoggedIn {
		ttl = s.keepLoggedInTTL
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email, ttl)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}

// ListUsers returns one page of users ordered by id.
func (s *UserService) ListUsers(ctx context.Context, page, perPage int) (*UserPage, error) {
	page, perPage = clampPage(page, perPage)

	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx, page, perPage)
	if err != nil {
		return nil, err
	}
	return &UserPage{Users: users, Page: page, NumPages: numPages(total, perPage)}, nil
}

// UpdateUser updates a user's non-sensitive information.
func (s *UserService) UpdateUser(ctx context.Context, id int64, username, email string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if username != "" {
		if user.Username = slug.Normalize(username, 0); user.Username == "" {
			return nil, fmt.Errorf("%w: invalid username", ErrValidation)
		}
	}
	if email != "" {
		if user.Email, err = parseEmail(email); err != nil {
			return nil, err
		}
	}

	if err := s.ensureAvailable(ctx, id, user.Username, user.Email); err != nil {
		return nil, err
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return s.users.FindByID(ctx, id)
}

// DeleteUser removes a user. Their posts stay, without an owner.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	return s.users.Delete(ctx, id)
}

// ensureAvailable is a fast-path check; the unique indexes stay authoritative.
func (s *UserService) ensureAvailable(ctx context.Context, selfID int64, username, email string) error {
	for field, value := range map[repository.UserField]string{
		repository.UserUsername: username,
		repository.UserEmail:    email,
	} {
		existing, err := s.users.FindByField(ctx, field, value)
		switch {
		case errors.Is(err, repository.ErrNotFound):
		case err != nil:
			return err
		case existing.ID != selfID:
			return ErrUsernameTaken
		}
	}
	return nil
}

// unknownUserHash is a hash no password matches in practice, built once with
// the configured cost.
func (s *UserService) unknownUserHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("unknown-user-placeholder")
		if err != nil {
			log.Error().Err(err).Msg("Failed to build placeholder password hash")
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// parseEmail accepts "addr@host" or "Name <addr@host>" and keeps the address.
func parseEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", fmt.Errorf("%w: invalid email", ErrValidation)
	}
	return addr.Address, nil
}
