package ratelimit

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// LoadConfig reads the RATE_LIMIT_* settings from v. A nil v yields the
// defaults.
func LoadConfig(v *viper.Viper) *Config {
	if v == nil {
		v = viper.New()
	}
	v.SetDefault("rate_limit_enabled", true)
	v.SetDefault("rate_limit_default_limit", 1000)
	v.SetDefault("rate_limit_default_window", time.Minute)
	v.SetDefault("rate_limit_cleanup_interval", 5*time.Minute)
	v.SetDefault("rate_limit_whitelist", "")
	v.SetDefault("rate_limit_blacklist", "")

	if !v.GetBool("rate_limit_enabled") {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    v.GetInt("rate_limit_default_limit"),
		DefaultWindow:   v.GetDuration("rate_limit_default_window"),
		CleanupInterval: v.GetDuration("rate_limit_cleanup_interval"),
		Whitelist:       parseIPList(v.GetString("rate_limit_whitelist")),
		Blacklist:       parseIPList(v.GetString("rate_limit_blacklist")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// LLM-backed and upload endpoints
		{Path: "/generate-path", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/generate-quiz", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/predict-from-resume", Method: "POST", Limit: 30, Window: time.Hour, Burst: 5},
		{Path: "/search-resources/", Method: "GET", Limit: 60, Window: time.Minute, Burst: 10},

		// Credential endpoints
		{Path: "/auth/signup", Method: "POST", Limit: 10, Window: time.Minute, Burst: 5},
		{Path: "/auth/login", Method: "POST", Limit: 20, Window: time.Minute, Burst: 10},

		{Path: "/predict", Method: "POST", Limit: 300, Window: time.Minute, Burst: 30},
		{Path: "/save-learning-path", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/learning-paths/", Method: "PATCH", Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/learning-paths/", Method: "DELETE", Limit: 100, Window: time.Minute, Burst: 10},
	}
}

// parseIPList parses a comma-separated list of IP addresses into a map.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
