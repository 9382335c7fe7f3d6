package mocks

import (
	"context"

	"github.com/SimpnicServerTeam/instaclone-auth/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockAccountGenerator is a mock implementation of the AccountGenerator interface.
type MockAccountGenerator struct {
	mock.Mock
}

func (m *MockAccountGenerator) Register(ctx context.Context, req models.RegisterRequest) (*models.Account, error) {
	args := m.Called(ctx, req)
	account, _ := args.Get(0).(*models.Account)
	return account, args.Error(1)
}

func (m *MockAccountGenerator) Login(ctx context.Context, req models.LoginRequest) (*models.Account, string, error) {
	args := m.Called(ctx, req)
	account, _ := args.Get(0).(*models.Account)
	return account, args.String(1), args.Error(2)
}

func (m *MockAccountGenerator) Current(ctx context.Context, accountID string) (*models.Account, error) {
	args := m.Called(ctx, accountID)
	account, _ := args.Get(0).(*models.Account)
	return account, args.Error(1)
}

func (m *MockAccountGenerator) Update(ctx context.Context, accountID string, req models.UpdateAccountRequest) (*models.Account, string, error) {
	args := m.Called(ctx, accountID, req)
	account, _ := args.Get(0).(*models.Account)
	return account, args.String(1), args.Error(2)
}

func (m *MockAccountGenerator) ChangePassword(ctx context.Context, accountID string, req models.ChangePasswordRequest) (*models.Account, string, error) {
	args := m.Called(ctx, accountID, req)
	account, _ := args.Get(0).(*models.Account)
	return account, args.String(1), args.Error(2)
}

func (m *MockAccountGenerator) Delete(ctx context.Context, accountID string) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}
