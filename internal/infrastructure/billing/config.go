package billing

import (
	"fmt"
	"strings"
	"time"
)

// Config holds settings for the credit-metering provider client
type Config struct {
	// BaseURL is the provider API root, e.g. "https://api.metering.example.com"
	BaseURL string

	// SecretKey authenticates this service against the provider
	SecretKey string

	// Timeout bounds each provider call
	Timeout time.Duration
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("billing: base URL is required")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("billing: base URL must start with http:// or https://")
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return fmt.Errorf("billing: secret key is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("billing: timeout must be positive")
	}
	return nil
}
