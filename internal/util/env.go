// Package util holds small environment parsing helpers used by the
// entry point.
package util

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// ParseBoolEnv reads key as a boolean. Accepted spellings are
// true/1/yes/on and false/0/no/off, case-insensitive; unset or
// unrecognized values yield def.
func ParseBoolEnv(key string, def bool) bool {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch raw {
	case "":
		return def
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	slog.Warn("ParseBoolEnv: unrecognized value, using default", "key", key, "value", raw, "default", def)
	return def
}

// ParseIntEnv reads key as an integer; unset or unparsable values yield
// def.
func ParseIntEnv(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("ParseIntEnv: unparsable value, using default", "key", key, "value", raw, "default", def)
		return def
	}
	return n
}
