package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userapi/internal/model"
)

func TestUserMemory_GetAll(t *testing.T) {
	repo := NewUserMemory()

	users, err := repo.GetAll(context.Background())

	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "ned", users[0].Nick)
	assert.Equal(t, "cat", users[1].Nick)
}

func TestUserMemory_GetAllReturnsCopy(t *testing.T) {
	repo := NewUserMemory()
	ctx := context.Background()

	users, _ := repo.GetAll(ctx)
	users[0].Nick = "changed"

	got, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "ned", got.Nick)
}

func TestUserMemory_Get(t *testing.T) {
	repo := NewUserMemory()
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		u, err := repo.Get(ctx, 2)
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, "Catelyn", u.Firstname)
	})

	t.Run("absent", func(t *testing.T) {
		u, err := repo.Get(ctx, 42)
		assert.NoError(t, err)
		assert.Nil(t, u)
	})
}

func TestUserMemory_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns max id plus one", func(t *testing.T) {
		repo := NewUserMemory()

		u, err := repo.Create(ctx, &model.User{ID: 99, Firstname: "John", Lastname: "Snow", Nick: "snow"})

		require.NoError(t, err)
		assert.Equal(t, model.User{ID: 3, Firstname: "John", Lastname: "Snow", Nick: "snow"}, *u)
		assert.Equal(t, 3, repo.Len())

		got, err := repo.Get(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, u, got)
	})

	t.Run("uses max rather than last", func(t *testing.T) {
		repo := NewUserMemoryWith([]model.User{{ID: 5}, {ID: 2}})

		u, err := repo.Create(ctx, &model.User{Nick: "x"})

		require.NoError(t, err)
		assert.Equal(t, int64(6), u.ID)
	})

	t.Run("empty store starts at one", func(t *testing.T) {
		repo := NewUserMemoryWith(nil)

		u, err := repo.Create(ctx, &model.User{Nick: "first"})

		require.NoError(t, err)
		assert.Equal(t, int64(1), u.ID)
	})

	t.Run("ids are recomputed after delete", func(t *testing.T) {
		repo := NewUserMemory()
		_, _ = repo.Delete(ctx, 2)

		u, err := repo.Create(ctx, &model.User{Nick: "again"})

		require.NoError(t, err)
		assert.Equal(t, int64(2), u.ID)
	})

	t.Run("does not alias the input", func(t *testing.T) {
		repo := NewUserMemory()
		in := &model.User{Nick: "snow"}

		_, err := repo.Create(ctx, in)
		require.NoError(t, err)
		in.Nick = "mutated"

		got, _ := repo.Get(ctx, 3)
		assert.Equal(t, "snow", got.Nick)
		assert.Zero(t, in.ID)
	})
}

func TestUserMemory_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces wholesale and keeps id", func(t *testing.T) {
		repo := NewUserMemoryWith([]model.User{{ID: 1, Firstname: "Eddard", Lastname: "Stark", Nick: "ned", Pass: "winter"}})
		ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

		u, err := repo.Update(ctx, &model.User{ID: 77, Firstname: "Sansa", Lastname: "Stark", Nick: "sansa", UpdatedAt: &ts}, 1)

		require.NoError(t, err)
		assert.Equal(t, model.User{ID: 1, Firstname: "Sansa", Lastname: "Stark", Nick: "sansa", UpdatedAt: &ts}, *u)

		got, err := repo.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, u, got)
		assert.Empty(t, got.Pass)
		assert.Equal(t, 1, repo.Len())
	})

	t.Run("keeps position", func(t *testing.T) {
		repo := NewUserMemory()

		_, err := repo.Update(ctx, &model.User{Nick: "sansa"}, 1)
		require.NoError(t, err)

		users, _ := repo.GetAll(ctx)
		assert.Equal(t, "sansa", users[0].Nick)
		assert.Equal(t, "cat", users[1].Nick)
	})

	t.Run("unknown id leaves store unchanged", func(t *testing.T) {
		repo := NewUserMemory()

		u, err := repo.Update(ctx, &model.User{Nick: "ghost"}, 42)

		assert.NoError(t, err)
		assert.Nil(t, u)
		users, _ := repo.GetAll(ctx)
		assert.Equal(t, SeedUsers(), users)
	})
}

func TestUserMemory_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes exactly one", func(t *testing.T) {
		repo := NewUserMemory()

		id, err := repo.Delete(ctx, 1)

		require.NoError(t, err)
		assert.Equal(t, int64(1), id)
		assert.Equal(t, 1, repo.Len())

		u, _ := repo.Get(ctx, 1)
		assert.Nil(t, u)

		users, _ := repo.GetAll(ctx)
		assert.Equal(t, "cat", users[0].Nick)
	})

	t.Run("unknown id is a no-op returning the id", func(t *testing.T) {
		repo := NewUserMemory()

		id, err := repo.Delete(ctx, 42)

		assert.NoError(t, err)
		assert.Equal(t, int64(42), id)
		assert.Equal(t, 2, repo.Len())
	})
}

func TestUserMemory_ConcurrentCreate(t *testing.T) {
	repo := NewUserMemoryWith(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.Create(ctx, &model.User{Nick: "n"})
		}()
	}
	wg.Wait()

	users, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 50)

	seen := make(map[int64]bool, len(users))
	for _, u := range users {
		assert.False(t, seen[u.ID], "duplicate id %d", u.ID)
		seen[u.ID] = true
	}
}
