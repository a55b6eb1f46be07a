package config

import "fmt"

// DefaultJWTExpirationMinutes is used when JWT_EXPIRATION_MINUTES is unset.
const DefaultJWTExpirationMinutes = 60

// JWTConfig holds configuration for JWT token generation and validation.
type JWTConfig struct {
	Secret            string
	ExpirationMinutes int
}

// NewJWTConfig validates the signing secret and token lifetime.
func NewJWTConfig(secret string, expirationMinutes int) (*JWTConfig, error) {
	config := &JWTConfig{
		Secret:            secret,
		ExpirationMinutes: expirationMinutes,
	}
	if err := config.normalize(); err != nil {
		return nil, err
	}
	return config, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required but not set")
	}
	if c.ExpirationMinutes < 1 {
		return fmt.Errorf("JWT_EXPIRATION_MINUTES must be at least 1 minute, got: %d", c.ExpirationMinutes)
	}
	return nil
}
