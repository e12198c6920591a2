// Package users implements the credential store: operator enrollment,
// account management, and authentication.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gabrielslopes/labelcheck/internal/common"
	"github.com/gabrielslopes/labelcheck/internal/logging"
	"github.com/gabrielslopes/labelcheck/internal/server/auth"
	"github.com/gabrielslopes/labelcheck/internal/server/config"
	"github.com/gabrielslopes/labelcheck/internal/server/models"
	usersrepo "github.com/gabrielslopes/labelcheck/internal/server/repositories/users"
)

type Service struct {
	repo        usersrepo.Repository
	logger      logging.Logger
	authTimeout time.Duration
}

func NewService(repo usersrepo.Repository, cfg *config.Config, logger logging.Logger) *Service {
	return &Service{
		repo:        repo,
		logger:      logger.With("module", "users"),
		authTimeout: cfg.AuthTimeout,
	}
}

// BootstrapRequired reports whether no active admin exists yet. While true,
// the only permitted operation is creating an admin account.
func (s *Service) BootstrapRequired(ctx context.Context) (bool, error) {
	ok, err := s.repo.HasActiveAdmin(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return !ok, nil
}

func (s *Service) requireBootstrapped(ctx context.Context) error {
	required, err := s.BootstrapRequired(ctx)
	if err != nil {
		return err
	}
	if required {
		return common.ErrBootstrapRequired
	}
	return nil
}

// Create enrolls a new account with a freshly salted password hash. While
// no active admin exists, only admin creation is accepted (first-run
// bootstrap). A taken login is rejected atomically by the storage layer.
func (s *Service) Create(ctx context.Context, login, name string, role models.Role, password string, active bool) (*models.User, error) {
	login = strings.TrimSpace(login)
	name = strings.TrimSpace(name)

	if login == "" || password == "" {
		return nil, fmt.Errorf("%w: login and password are required", common.ErrValidation)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", common.ErrValidation, role)
	}
	if name == "" {
		name = login
	}

	required, err := s.BootstrapRequired(ctx)
	if err != nil {
		return nil, err
	}
	if required && role != models.RoleAdmin {
		return nil, common.ErrBootstrapRequired
	}

	saltHex, hashHex := auth.MakeHash(password)

	user := &models.User{
		ID:        uuid.NewString(),
		Login:     login,
		Name:      name,
		Role:      role,
		SaltHex:   saltHex,
		HashHex:   hashHex,
		Active:    active,
		CreatedAt: time.Now(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrDuplicateLogin) {
			return nil, common.ErrDuplicateLogin
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	s.logger.Info(ctx, "user created", "login", login, "role", role)
	return user.Sanitized(), nil
}

// Update mutates account metadata only; credentials are untouched.
func (s *Service) Update(ctx context.Context, id, name string, role models.Role, active bool) error {
	if err := s.requireBootstrapped(ctx); err != nil {
		return err
	}
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", common.ErrValidation, role)
	}

	err := s.repo.Update(ctx, id, strings.TrimSpace(name), role, active)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	s.logger.Info(ctx, "user updated", "id", id, "role", role, "active", active)
	return nil
}

// ResetPassword regenerates the salt and hash for the account.
func (s *Service) ResetPassword(ctx context.Context, id, newPassword string) error {
	if err := s.requireBootstrapped(ctx); err != nil {
		return err
	}
	if newPassword == "" {
		return fmt.Errorf("%w: password is required", common.ErrValidation)
	}

	saltHex, hashHex := auth.MakeHash(newPassword)

	err := s.repo.UpdateCredentials(ctx, id, saltHex, hashHex)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	s.logger.Info(ctx, "password reset", "id", id)
	return nil
}

// Remove hard-deletes the account.
func (s *Service) Remove(ctx context.Context, id string) error {
	if err := s.requireBootstrapped(ctx); err != nil {
		return err
	}

	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	s.logger.Info(ctx, "user removed", "id", id)
	return nil
}

// Get returns one account without credential material.
func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return user.Sanitized(), nil
}

// List returns accounts matching the search term (login or name),
// without credential material.
func (s *Service) List(ctx context.Context, search string) ([]models.User, error) {
	if err := s.requireBootstrapped(ctx); err != nil {
		return nil, err
	}

	found, err := s.repo.List(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	result := make([]models.User, 0, len(found))
	for i := range found {
		result = append(result, *found[i].Sanitized())
	}
	return result, nil
}

// Authenticate verifies the credentials and returns the identity.
//
// Unknown login, wrong password, and inactive account are indistinguishable
// to the caller: all return common.ErrInvalidCredentials. The storage lookup
// runs under the configured timeout so a slow backend cannot hang the
// operator's scan loop.
func (s *Service) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.authTimeout)
	defer cancel()

	user, err := s.repo.GetByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	if !user.Active {
		return nil, common.ErrInvalidCredentials
	}
	if !auth.VerifyPassword(password, user.SaltHex, user.HashHex) {
		return nil, common.ErrInvalidCredentials
	}

	return user.Sanitized(), nil
}
