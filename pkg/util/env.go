// Package util holds small helpers shared by the command line.
package util

import (
	"os"
	"strconv"
)

// EnvOr returns the value of the first of keys set to a non-empty value, or def.
func EnvOr(def string, keys ...string) string {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	return def
}

// EnvBool parses key with strconv.ParseBool. Unset or unparsable values yield def.
func EnvBool(key string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return b
}
