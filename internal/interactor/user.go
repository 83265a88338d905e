package interactor

import (
	"context"

	"userapi/internal/model"
	"userapi/internal/repository"
)

// UserUseCase defines the application-level operations on users.
type UserUseCase interface {
	// GetAll returns every stored user.
	GetAll(ctx context.Context) ([]model.User, error)

	// Get returns a user by id, or nil when it does not exist.
	Get(ctx context.Context, id int64) (*model.User, error)

	// Create validates fields and stores a new user.
	Create(ctx context.Context, fields model.UserFields) (*model.User, error)

	// Update validates fields and replaces the user stored under id.
	// It returns nil when id does not exist.
	Update(ctx context.Context, fields model.UserFields, id int64) (*model.User, error)

	// Delete removes a user and returns the requested id.
	Delete(ctx context.Context, id int64) (int64, error)
}

// UserInteractor implements UserUseCase on top of any repository.UserRepository.
// It keeps no state of its own.
type UserInteractor struct {
	repo repository.UserRepository
}

var _ UserUseCase = (*UserInteractor)(nil)

// NewUserInteractor constructs a UserInteractor around an injected repository.
func NewUserInteractor(repo repository.UserRepository) *UserInteractor {
	return &UserInteractor{repo: repo}
}

func (i *UserInteractor) GetAll(ctx context.Context) ([]model.User, error) {
	return i.repo.GetAll(ctx)
}

func (i *UserInteractor) Get(ctx context.Context, id int64) (*model.User, error) {
	return i.repo.Get(ctx, id)
}

// Create returns a *model.ValidationError unchanged when a required field is missing.
func (i *UserInteractor) Create(ctx context.Context, fields model.UserFields) (*model.User, error) {
	u, err := model.NewUser(fields)
	if err != nil {
		return nil, err
	}
	return i.repo.Create(ctx, u)
}

// Update returns a *model.ValidationError unchanged when a required field is missing.
func (i *UserInteractor) Update(ctx context.Context, fields model.UserFields, id int64) (*model.User, error) {
	u, err := model.NewUser(fields)
	if err != nil {
		return nil, err
	}
	return i.repo.Update(ctx, u, id)
}

func (i *UserInteractor) Delete(ctx context.Context, id int64) (int64, error) {
	return i.repo.Delete(ctx, id)
}
