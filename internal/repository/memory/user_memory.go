package memory

import (
	"context"
	"sync"

	"userapi/internal/model"
	"userapi/internal/repository"
)

// UserMemory is an in-process implementation of repository.UserRepository backed by an ordered slice.
// It lives as long as the process and is safe for concurrent use.
type UserMemory struct {
	mu    sync.RWMutex
	users []model.User
}

var _ repository.UserRepository = (*UserMemory)(nil)

// SeedUsers returns the records every new store starts with.
func SeedUsers() []model.User {
	return []model.User{
		{ID: 1, Firstname: "Eddard", Lastname: "Stark", Nick: "ned"},
		{ID: 2, Firstname: "Catelyn", Lastname: "Tully", Nick: "cat"},
	}
}

// NewUserMemory creates a store holding the seed users.
func NewUserMemory() *UserMemory {
	return NewUserMemoryWith(SeedUsers())
}

// NewUserMemoryWith creates a store holding a copy of users, in the given order.
func NewUserMemoryWith(users []model.User) *UserMemory {
	s := make([]model.User, len(users))
	copy(s, users)
	return &UserMemory{users: s}
}

// GetAll returns a copy of the stored users in insertion order.
func (r *UserMemory) GetAll(ctx context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.User, len(r.users))
	copy(out, r.users)
	return out, nil
}

// Get returns the first user with a matching id, or nil.
func (r *UserMemory) Get(ctx context.Context, id int64) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, nil
	}
	u := r.users[i]
	return &u, nil
}

// Create appends u under id max+1. An empty store starts at 1.
func (r *UserMemory) Create(ctx context.Context, u *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := *u
	rec.ID = r.nextID()
	r.users = append(r.users, rec)
	return &rec, nil
}

// Update replaces the slot holding id with u. Only the id of the original record survives.
func (r *UserMemory) Update(ctx context.Context, u *model.User, id int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, nil
	}
	rec := *u
	rec.ID = id
	r.users[i] = rec
	return &rec, nil
}

// Delete removes exactly one user with a matching id. It returns id whether or not anything was removed.
func (r *UserMemory) Delete(ctx context.Context, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.indexOf(id); i >= 0 {
		r.users = append(r.users[:i], r.users[i+1:]...)
	}
	return id, nil
}

// Len reports the number of stored users.
func (r *UserMemory) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

func (r *UserMemory) indexOf(id int64) int {
	for i := range r.users {
		if r.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *UserMemory) nextID() int64 {
	var top int64
	for _, u := range r.users {
		if u.ID > top {
			top = u.ID
		}
	}
	return top + 1
}
