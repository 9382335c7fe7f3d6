package mocks

import (
	"github.com/SimpnicServerTeam/instaclone-auth/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockCredentialGenerator is a mock implementation of the CredentialGenerator interface.
type MockCredentialGenerator struct {
	mock.Mock
}

func (m *MockCredentialGenerator) Enroll(secret string) (models.Credential, error) {
	args := m.Called(secret)
	return args.Get(0).(models.Credential), args.Error(1)
}

func (m *MockCredentialGenerator) Verify(secret string, cred models.Credential) bool {
	args := m.Called(secret, cred)
	return args.Bool(0)
}
