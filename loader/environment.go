package loader

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/natansdj/electives"
)

// EnvFile overrides the default .env lookup
var EnvFile string

// Loading .env environment variable into memory. Variables already set in the
// process environment win, and a missing file only warns.
func Environment() {
	var err error
	if EnvFile != "" {
		err = godotenv.Load(EnvFile)
	} else {
		err = godotenv.Load()
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		electives.LogW("Environment: .env file not found, using process environment.")
	case err != nil:
		electives.LogE("Environment: failed to read .env file: %s", err.Error())
	}
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// getEnvBool retrieves boolean from environment variable with default fallback
func getEnvBool(key string, defaultValue bool) bool {
	value := getEnv(key)
	if value == "" {
		return defaultValue
	}
	result, err := strconv.ParseBool(value)
	if err != nil {
		electives.LogW("Environment: %s=%q is not a boolean, using %t.", key, value, defaultValue)
		return defaultValue
	}
	return result
}

// getEnvBoolPtr is getEnvBool for settings whose zero value differs from their default
func getEnvBoolPtr(key string) *bool {
	value := getEnv(key)
	if value == "" {
		return nil
	}
	result, err := strconv.ParseBool(value)
	if err != nil {
		electives.LogW("Environment: %s=%q is not a boolean, using default.", key, value)
		return nil
	}
	return &result
}

// getEnvInt returns 0 when unset so the type getters apply their defaults
func getEnvInt(key string) int {
	value := getEnv(key)
	if value == "" {
		return 0
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		electives.LogW("Environment: %s=%q is not an integer, using default.", key, value)
		return 0
	}
	return result
}

// getEnvDuration accepts a Go duration ("5s", "6h") or a bare number of milliseconds
func getEnvDuration(key string) time.Duration {
	value := getEnv(key)
	if value == "" {
		return 0
	}
	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		electives.LogW("Environment: %s=%q is not a duration, using default.", key, value)
		return 0
	}
	return d
}
