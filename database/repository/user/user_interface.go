package userRepo

import (
	"context"

	"skillbridge/models"
)

// UserRepository defines methods for buyer account lookups.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
}
