package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/profile-auth/internal/models"
	"github.com/hongminglow/profile-auth/internal/storage"
)

func TestCreateUser_CreatesEmptyProfile(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.CreateUser(ctx, models.User{Name: "Ann", Surname: "Lee", Username: "ann", PasswordHash: "h"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	require.NotNil(t, created.Profile)
	assert.Equal(t, created.ID, created.Profile.UserID)
	assert.Equal(t, models.ProfileFields{}, created.Profile.ProfileFields)

	found, err := s.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, found.Profile)
	assert.Equal(t, created.Profile.ID, found.Profile.ID)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.CreateUser(ctx, models.User{Username: "alice"})
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, models.User{Username: "alice"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
	assert.Len(t, s.users, 1)

	// lookups are case-sensitive
	_, err = s.CreateUser(ctx, models.User{Username: "Alice"})
	assert.NoError(t, err)
}

func TestCreateUser_ConcurrentSameUsername(t *testing.T) {
	s := New()
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		conflicts int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.CreateUser(ctx, models.User{Username: "race"}); err != nil {
				mu.Lock()
				conflicts++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 15, conflicts)
	assert.Len(t, s.users, 1)
}

func TestFindByUsername_NotFound(t *testing.T) {
	_, err := New().FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateProfile_OverwritesAllFields(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, err := s.CreateUser(ctx, models.User{Username: "ann"})
	require.NoError(t, err)

	phone, city, age := "555-1234", "Baku", 30
	require.NoError(t, s.UpdateProfile(ctx, u.ID, models.ProfileFields{Phone: &phone, City: &city, Age: &age}))
	require.NoError(t, s.UpdateProfile(ctx, u.ID, models.ProfileFields{Phone: &phone}))

	got, err := s.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "555-1234", *got.Profile.Phone)
	assert.Nil(t, got.Profile.City)
	assert.Nil(t, got.Profile.Age)

	// returned rows are copies
	*got.Profile.Phone = "changed"
	again, err := s.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "555-1234", *again.Profile.Phone)
}

func TestUpdateProfile_MissingProfile(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, err := s.CreateUser(ctx, models.User{Username: "ann"})
	require.NoError(t, err)
	delete(s.profiles, u.ID)

	phone := "555"
	err = s.UpdateProfile(ctx, u.ID, models.ProfileFields{Phone: &phone})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, exists := s.profiles[u.ID]
	assert.False(t, exists)
}

func TestDeleteUser_CascadesToProfile(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, err := s.CreateUser(ctx, models.User{Username: "ann"})
	require.NoError(t, err)

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	assert.Empty(t, s.profiles)
	_, err = s.FindByUsername(ctx, "ann")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.UpdateProfile(ctx, u.ID, models.ProfileFields{}), storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteUser(ctx, u.ID), storage.ErrNotFound)
}
