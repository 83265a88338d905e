package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (memory, postgres) inside this directory.

import (
	"context"
	"errors"

	"userapi/internal/model"
)

// ErrNotImplemented is returned by UnimplementedUserRepository for every operation a variant did not override.
var ErrNotImplemented = errors.New("method not implemented")

// UnimplementedUserRepository is the default variant of UserRepository.
// Embed it in a partial implementation so the type satisfies the interface while
// any operation left out fails fast instead of silently doing nothing.
type UnimplementedUserRepository struct{}

var _ UserRepository = UnimplementedUserRepository{}

func (UnimplementedUserRepository) GetAll(context.Context) ([]model.User, error) {
	return nil, ErrNotImplemented
}

func (UnimplementedUserRepository) Get(context.Context, int64) (*model.User, error) {
	return nil, ErrNotImplemented
}

func (UnimplementedUserRepository) Create(context.Context, *model.User) (*model.User, error) {
	return nil, ErrNotImplemented
}

func (UnimplementedUserRepository) Update(context.Context, *model.User, int64) (*model.User, error) {
	return nil, ErrNotImplemented
}

func (UnimplementedUserRepository) Delete(context.Context, int64) (int64, error) {
	return 0, ErrNotImplemented
}
