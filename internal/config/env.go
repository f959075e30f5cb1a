package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	xglog "github.com/radio-aktywne/datarecords/internal/log"
)

// ParseString reads a string from an environment variable, logging the
// source for observability, grounded on the teacher's internal/config/env.go.
func ParseString(key, defaultValue string) string {
	logger := xglog.WithComponent("config")
	sensitive := strings.Contains(strings.ToLower(key), "password") || strings.Contains(strings.ToLower(key), "token")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		if sensitive {
			logger.Debug().Str("key", key).Str("source", "default").Bool("sensitive", true).Msg("using default value")
		} else {
			logger.Debug().Str("key", key).Str("default", defaultValue).Str("source", "default").Msg("using default value")
		}
		return defaultValue
	}
	if sensitive {
		logger.Debug().Str("key", key).Str("source", "environment").Bool("sensitive", true).Msg("using environment variable")
	} else {
		logger.Debug().Str("key", key).Str("value", v).Str("source", "environment").Msg("using environment variable")
	}
	return v
}

// ParseInt reads an int from an environment variable, falling back to
// defaultValue on absence or parse error.
func ParseInt(key string, defaultValue int) int {
	logger := xglog.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logger.Debug().Str("key", key).Int("default", defaultValue).Str("source", "default").Msg("using default value")
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", v).Int("default", defaultValue).Msg("invalid integer in environment variable, using default")
		return defaultValue
	}
	logger.Debug().Str("key", key).Int("value", i).Str("source", "environment").Msg("using environment variable")
	return i
}

// ParseDuration reads a Go duration string from an environment variable.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	logger := xglog.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logger.Debug().Str("key", key).Dur("default", defaultValue).Str("source", "default").Msg("using default value")
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", v).Dur("default", defaultValue).Msg("invalid duration in environment variable, using default")
		return defaultValue
	}
	logger.Debug().Str("key", key).Dur("value", d).Str("source", "environment").Msg("using environment variable")
	return d
}

// ParseBool reads a boolean from an environment variable, accepting
// true/false/1/0/yes/no (case-insensitive).
func ParseBool(key string, defaultValue bool) bool {
	logger := xglog.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logger.Debug().Str("key", key).Bool("default", defaultValue).Str("source", "default").Msg("using default value")
		return defaultValue
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		logger.Warn().Str("key", key).Str("value", v).Bool("default", defaultValue).Msg("invalid boolean in environment variable, using default")
		return defaultValue
	}
}

// ParseIntList reads a comma-separated list of ints from an environment
// variable (used for server.ports.srt, the configured port universe).
func ParseIntList(key string, defaultValue []int) []int {
	logger := xglog.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logger.Debug().Str("key", key).Ints("default", defaultValue).Str("source", "default").Msg("using default value")
		return defaultValue
	}

	parts := strings.Split(v, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		i, err := strconv.Atoi(p)
		if err != nil {
			logger.Warn().Str("key", key).Str("value", v).Msg("invalid integer list in environment variable, using default")
			return defaultValue
		}
		out = append(out, i)
	}
	return out
}
