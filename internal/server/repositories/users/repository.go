// Package users contains the storage layer for operator accounts.
package users

import (
	"context"

	"github.com/gabrielslopes/labelcheck/internal/server/models"
)

// Repository is the credential-store contract. Login uniqueness is
// enforced here, at the storage layer: Create returns
// common.ErrDuplicateLogin when the login is already taken.
type Repository interface {
	Create(ctx context.Context, user *models.User) error
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, search string) ([]models.User, error)
	Update(ctx context.Context, id string, name string, role models.Role, active bool) error
	UpdateCredentials(ctx context.Context, id string, saltHex, hashHex string) error
	Delete(ctx context.Context, id string) error
	HasActiveAdmin(ctx context.Context) (bool, error)
}
