// Package memory is a process-local storage.UserStore with the same
// uniqueness and cascade rules as the Postgres schema.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hongminglow/profile-auth/internal/models"
	"github.com/hongminglow/profile-auth/internal/storage"
)

var _ storage.UserStore = (*Store)(nil)

type Store struct {
	mu          sync.RWMutex
	nextUserID  int64
	nextProfile int64
	users       map[int64]models.User
	byUsername  map[string]int64
	profiles    map[int64]models.Profile // keyed by user id
	now         func() time.Time
}

func New() *Store {
	return &Store{
		users:      make(map[int64]models.User),
		byUsername: make(map[string]int64),
		profiles:   make(map[int64]models.Profile),
		now:        time.Now,
	}
}

func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUsername[user.Username]; taken {
		return models.User{}, storage.ErrAlreadyExists
	}

	s.nextUserID++
	s.nextProfile++
	user.ID = s.nextUserID
	user.CreatedAt = s.now().UTC()
	user.Profile = nil
	profile := models.Profile{ID: s.nextProfile, UserID: user.ID}

	s.users[user.ID] = user
	s.byUsername[user.Username] = user.ID
	s.profiles[user.ID] = profile

	user.Profile = &profile
	return user, nil
}

func (s *Store) FindByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return s.users[id], nil
}

func (s *Store) FindByID(_ context.Context, id int64) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	if profile, ok := s.profiles[id]; ok {
		profile.ProfileFields = cloneFields(profile.ProfileFields)
		user.Profile = &profile
	}
	return user, nil
}

func (s *Store) UpdateProfile(_ context.Context, userID int64, fields models.ProfileFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[userID]
	if !ok {
		return storage.ErrNotFound
	}
	profile.ProfileFields = cloneFields(fields)
	s.profiles[userID] = profile
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	delete(s.users, id)
	delete(s.byUsername, user.Username)
	delete(s.profiles, id)
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() {}

// cloneFields copies pointer targets so callers cannot mutate stored rows.
func cloneFields(f models.ProfileFields) models.ProfileFields {
	return models.ProfileFields{
		Phone:   clone(f.Phone),
		Age:     clone(f.Age),
		Country: clone(f.Country),
		City:    clone(f.City),
		Address: clone(f.Address),
		ZipCode: clone(f.ZipCode),
	}
}

func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
