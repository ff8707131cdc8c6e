// Package service provides authentication business logic,
// delegating persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/AuthPortal/internal/common"
	"github.com/atinyakov/AuthPortal/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines the user persistence operations
// required by the authentication service.
type UserRepository interface {
	// UserExists returns true if a user with the given username exists.
	UserExists(ctx context.Context, username string) (bool, error)
	// CreateUser stores a new user. Returns common.ErrUserExists on a duplicate username.
	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByUsername returns the user or common.ErrNotFound.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// DeleteAllUsers removes every user record.
	DeleteAllUsers(ctx context.Context) error
}

// SessionRepository defines the session persistence operations.
type SessionRepository interface {
	CreateSession(ctx context.Context, s *models.Session) error
	// GetSession returns the session or common.ErrNotFound.
	GetSession(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
	// DeleteAllSessions removes every session.
	DeleteAllSessions(ctx context.Context) error
}

// Service implements signup, login and session management.
type Service struct {
	users    UserRepository
	sessions SessionRepository
	ttl      time.Duration

	// hashCost is the bcrypt work factor.
	hashCost int
	now      func() time.Time
	newID    func() string
}

// NewAuthService constructs a Service. Sessions it creates live for ttl.
func NewAuthService(users UserRepository, sessions SessionRepository, ttl time.Duration) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		ttl:      ttl,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Signup validates form and creates the user it describes.
//
// It returns common.ErrPasswordMismatch whenever the confirmation differs,
// whatever else the form holds, then common.ErrEmptyCredentials when
// username or password is empty and common.ErrUserExists when the username
// is taken. No record is written in any of those cases.
func (s *Service) Signup(ctx context.Context, form models.SignupForm) (*models.User, error) {
	if form.Password1 != form.Password2 {
		return nil, common.ErrPasswordMismatch
	}
	if form.Username == "" || form.Password1 == "" {
		return nil, common.ErrEmptyCredentials
	}

	exists, err := s.users.UserExists(ctx, form.Username)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	if exists {
		return nil, common.ErrUserExists
	}

	return s.CreateUser(ctx, form.Username, form.Email, form.Password1)
}

// CreateUser hashes password and stores a new user unconditionally.
func (s *Service) CreateUser(ctx context.Context, username, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           s.newID(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, common.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("signup: %w", err)
	}
	return user, nil
}

// Authenticate checks username and password against the stored hash.
// Unknown users and wrong passwords both yield common.ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return user, nil
}

// Login authenticates the user and opens a new session for them.
func (s *Service) Login(ctx context.Context, username, password string) (*models.Session, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	session := &models.Session{
		Token:     s.newID(),
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return session, nil
}

// Logout destroys the session identified by token.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.sessions.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// SessionByToken returns the live session for token.
// Missing and expired sessions both yield common.ErrNotFound; an expired
// session is deleted on the way out, and a failure to delete it is returned.
func (s *Service) SessionByToken(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, common.ErrNotFound
	}
	session, err := s.sessions.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		if err := s.sessions.DeleteSession(ctx, token); err != nil {
			return nil, fmt.Errorf("delete expired session: %w", err)
		}
		return nil, common.ErrNotFound
	}
	return session, nil
}

// ResetUsers removes every session and every user record. Sessions go
// first: a session store separate from the user store (Redis) would
// otherwise keep deleted users signed in.
func (s *Service) ResetUsers(ctx context.Context) error {
	if err := s.sessions.DeleteAllSessions(ctx); err != nil {
		return fmt.Errorf("reset sessions: %w", err)
	}
	if err := s.users.DeleteAllUsers(ctx); err != nil {
		return fmt.Errorf("reset users: %w", err)
	}
	return nil
}
