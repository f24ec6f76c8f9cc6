package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MehedizYT/starfall-galaxy-tma/internal/models"
)

func TestMemory_GetUnknownUser(t *testing.T) {
	s := NewMemory()

	_, err := s.Get(context.Background(), 1)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMemory_UpsertCreatesOnce(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	first, created, err := s.Upsert(ctx, 42, func() *models.User {
		return models.NewUser(42, "Ada", "ada_l")
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, []string{models.DefaultItemID}, first.Inventory)

	again, created, err := s.Upsert(ctx, 42, func() *models.User {
		return models.NewUser(42, "Other", "other")
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Ada", again.FirstName)
}

func TestMemory_UpdateUnknownUser(t *testing.T) {
	s := NewMemory()

	_, err := s.Update(context.Background(), 5, func(u *models.User) error { return nil })
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMemory_UpdateErrorDiscardsWrite(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	_, _, err := s.Upsert(ctx, 7, func() *models.User { return models.NewUser(7, "A", "a") })
	require.NoError(t, err)

	boom := assert.AnError
	_, err = s.Update(ctx, 7, func(u *models.User) error {
		u.Stars = 999
		return boom
	})
	assert.ErrorIs(t, err, boom)

	user, err := s.Get(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, user.Stars)
}

func TestMemory_ConcurrentUpdatesSerialize(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	_, _, err := s.Upsert(ctx, 9, func() *models.User { return models.NewUser(9, "A", "a") })
	require.NoError(t, err)

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Update(ctx, 9, func(u *models.User) error {
				u.Stars++
				return nil
			})
		}()
	}
	wg.Wait()

	user, err := s.Get(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, float64(n), user.Stars)
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	_, _, err := s.Upsert(ctx, 3, func() *models.User { return models.NewUser(3, "A", "a") })
	require.NoError(t, err)

	got, err := s.Get(ctx, 3)
	require.NoError(t, err)
	got.Stars = 777
	got.Inventory = append(got.Inventory, "crown")

	fresh, err := s.Get(ctx, 3)
	require.NoError(t, err)
	assert.Zero(t, fresh.Stars)
	assert.Equal(t, []string{models.DefaultItemID}, fresh.Inventory)
}
