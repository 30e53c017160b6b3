package memorystorage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/patric-chuzhbe/usrlinks/internal/models"
)

// UserStore keeps users in a map. It mirrors the relational store: ids are
// assigned from a strictly increasing sequence, email uniqueness is exact
// (case-sensitive) and login lookups compare emails case-insensitively.
type UserStore struct {
	mu     sync.RWMutex
	users  map[int64]*models.User
	nextID int64
	now    func() time.Time
}

// NewUserStore returns an empty UserStore.
func NewUserStore() *UserStore {
	return &UserStore{
		users:  map[int64]*models.User{},
		nextID: 1,
		now:    time.Now,
	}
}

func (s *UserStore) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sortedCopies(func(*models.User) bool { return true }), nil
}

func (s *UserStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	usr, found := s.users[id]
	if !found {
		return nil, models.ErrNotFound
	}
	result := *usr
	return &result, nil
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var match *models.User
	for _, usr := range s.users {
		if strings.EqualFold(usr.Email, email) && (match == nil || usr.ID < match.ID) {
			match = usr
		}
	}
	if match == nil {
		return nil, models.ErrNotFound
	}
	result := *match
	return &result, nil
}

func (s *UserStore) CreateUser(ctx context.Context, name, email, passwordHash string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(email, 0) {
		return 0, models.ErrEmailTaken
	}

	now := s.now().UTC()
	id := s.nextID
	s.nextID++
	s.users[id] = &models.User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	return id, nil
}

func (s *UserStore) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	usr, found := s.users[id]
	if !found {
		return models.ErrNotFound
	}
	if patch.Email != nil && s.emailTaken(*patch.Email, id) {
		return models.ErrEmailTaken
	}

	if patch.Name != nil {
		usr.Name = *patch.Name
	}
	if patch.Email != nil {
		usr.Email = *patch.Email
	}
	if patch.PasswordHash != nil {
		usr.PasswordHash = *patch.PasswordHash
	}
	usr.UpdatedAt = s.now().UTC()

	return nil
}

func (s *UserStore) DeleteUser(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.users[id]; !found {
		return false, nil
	}
	delete(s.users, id)

	return true, nil
}

// SearchUsersByName returns users whose name contains term, ignoring case.
func (s *UserStore) SearchUsersByName(ctx context.Context, term string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(term)
	return s.sortedCopies(func(usr *models.User) bool {
		return strings.Contains(strings.ToLower(usr.Name), needle)
	}), nil
}

func (s *UserStore) CountUsers(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.users)), nil
}

func (s *UserStore) Ping(ctx context.Context) error {
	return nil
}

func (s *UserStore) Close() error {
	return nil
}

func (s *UserStore) emailTaken(email string, exceptID int64) bool {
	for id, usr := range s.users {
		if id != exceptID && usr.Email == email {
			return true
		}
	}
	return false
}

func (s *UserStore) sortedCopies(keep func(*models.User) bool) []models.User {
	result := make([]models.User, 0, len(s.users))
	for _, usr := range s.users {
		if keep(usr) {
			result = append(result, *usr)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result
}
