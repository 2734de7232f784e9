package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration and fills derived fields.
func (c *Config) Validate() error {
	var errs []error

	c.Naming.Provider = strings.ToLower(strings.TrimSpace(c.Naming.Provider))
	switch c.Naming.Provider {
	case ProviderGemini:
		if c.Naming.GeminiAPIKey == "" {
			errs = append(errs, fmt.Errorf("GEMINI_API_KEY is required when NAMING_PROVIDER=gemini (use NAMING_PROVIDER=none to run offline)"))
		}
	case ProviderOpenRouter:
		if c.Naming.OpenRouterAPIKey == "" {
			errs = append(errs, fmt.Errorf("OPENROUTER_API_KEY is required when NAMING_PROVIDER=openrouter"))
		}
	case ProviderNone:
	default:
		errs = append(errs, fmt.Errorf("unknown naming provider %q", c.Naming.Provider))
	}

	if c.Naming.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("naming timeout must be positive"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, fmt.Errorf("session ttl must be positive"))
	}
	if c.Session.JanitorInterval <= 0 {
		errs = append(errs, fmt.Errorf("session janitor interval must be positive"))
	}
	if c.Session.CookieName == "" {
		errs = append(errs, fmt.Errorf("session cookie name is required"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server shutdown timeout must be positive"))
	}

	c.Naming.FallbackModels = parseList(c.Naming.FallbackModelsRaw)

	return errors.Join(errs...)
}

func parseList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
