package repository

import (
	"context"

	"userapi/internal/model"
)

// UserRepository defines data access for users. Implementations hold no business logic
// and never validate: the interactor hands them users built by model.NewUser.
//
// Lookup misses are not errors. Get and Update report an absent user as (nil, nil),
// and Delete of an unknown id leaves the store unchanged.
type UserRepository interface {
	// GetAll returns every stored user in storage order.
	GetAll(ctx context.Context) ([]model.User, error)

	// Get returns the user with the given id, or nil if there is none.
	Get(ctx context.Context, id int64) (*model.User, error)

	// Create stores u under a freshly assigned id (max existing id + 1) and returns the stored record.
	// The incoming u.ID is ignored.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// Update replaces the user stored under id with u, keeping id. The incoming u.ID is ignored.
	Update(ctx context.Context, u *model.User, id int64) (*model.User, error)

	// Delete removes the user with the given id and returns the requested id.
	Delete(ctx context.Context, id int64) (int64, error)
}
