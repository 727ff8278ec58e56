package config

import "os"

// Environment represents the current environment
type Environment string

const (
	Development Environment = "development"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

// GetEnvironment reads CT_ENV, defaulting to production
func GetEnvironment() Environment {
	switch Environment(os.Getenv("CT_ENV")) {
	case Development:
		return Development
	case Testing:
		return Testing
	default:
		return Production
	}
}
