package mocks

import (
	"github.com/SimpnicServerTeam/instaclone-auth/internal/config"
)

// TestJWTSecret is 32 bytes, the minimum accepted signing key length.
const TestJWTSecret = "test-jwt-secret-for-account-test"

func CreateTestConfig() *config.Config {
	return &config.Config{
		Port:          "8080",
		AppEnv:        "test",
		LogLevel:      "debug",
		StorageDriver: config.StorageMemory,
		Token: config.TokenConfig{
			Secret: TestJWTSecret,
			Issuer: "instaclone-auth-test",
		},
		// Lowest accepted cost so tests stay fast.
		KDF: config.KDFConfig{
			Iterations: 100000,
			SaltLength: 16,
			KeyLength:  32,
		},
		CORSAllowOrigins: []string{"*"},
	}
}
