package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mesa-hq/mesa/internal/shared"
)

// ErrEmailTaken indicates a signup with an already registered email.
var ErrEmailTaken = errors.New("auth: email already registered")

// ProfileCreator creates the profile row that binds an identity to the
// tenant layer. Implemented by the restaurant module's profile store.
type ProfileCreator interface {
	CreateProfile(ctx context.Context, userID int64, fullName string) error
}

// StaffLinker binds pending staff invites matching an email to a freshly
// registered account. Optional.
type StaffLinker interface {
	LinkUser(ctx context.Context, email string, userID int64) error
}

// Service wraps authentication business rules.
type Service struct {
	repo     Repository
	profiles ProfileCreator
	staff    StaffLinker
}

// NewService constructs a new Service. linker may be nil.
func NewService(repo Repository, profiles ProfileCreator, linker StaffLinker) *Service {
	return &Service{repo: repo, profiles: profiles, staff: linker}
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

// Signup registers a new account and its profile. The profile starts with no
// restaurant bound; the restaurant creation flow sets the binding.
func (s *Service) Signup(ctx context.Context, email, password, fullName string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.CreateUser(ctx, email, string(hash))
	if err != nil {
		return nil, err
	}
	if err := s.profiles.CreateProfile(ctx, user.ID, fullName); err != nil {
		return nil, err
	}
	if s.staff != nil {
		if err := s.staff.LinkUser(ctx, user.Email, user.ID); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}
