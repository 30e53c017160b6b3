// Package mockstorage provides a testify-based mock of the user storage.
// It is used to drive the service and router layers into storage failure paths.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/usrlinks/internal/models"
)

// StorageMock is a testify mock of the user storage.
type StorageMock struct {
	mock.Mock
}

func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *StorageMock) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *StorageMock) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	usr, _ := args.Get(0).(*models.User)
	return usr, args.Error(1)
}

func (m *StorageMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	usr, _ := args.Get(0).(*models.User)
	return usr, args.Error(1)
}

func (m *StorageMock) CreateUser(ctx context.Context, name, email, passwordHash string) (int64, error) {
	args := m.Called(ctx, name, email, passwordHash)
	return args.Get(0).(int64), args.Error(1)
}

func (m *StorageMock) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *StorageMock) DeleteUser(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *StorageMock) SearchUsersByName(ctx context.Context, term string) ([]models.User, error) {
	args := m.Called(ctx, term)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *StorageMock) CountUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
