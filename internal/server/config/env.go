package config

import (
	"github.com/caarlos0/env/v11"
)

// parseEnv overlays Config fields with values from environment variables
// named in the struct's env tags. Unset variables leave fields untouched.
// Malformed values (e.g. TOKEN_VALIDITY=soon) cause a panic, like a broken
// JSON file does.
func parseEnv(config *Config) {
	if err := env.Parse(config); err != nil {
		panic(err)
	}
}
