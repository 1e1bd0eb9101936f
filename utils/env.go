package utils

import (
	"fmt"
	"os"
	"strconv"
)

var (
	Env_SleepSeconds           = MustEnvOrDefaultInt64("SHUTDOWN_SLEEP_SEC", 0)
	Env_ShutdownTimeoutSeconds = MustEnvOrDefaultInt64("SHUTDOWN_TIMEOUT_SEC", 1)

	Env_SelfIP = EnvOrDefault("SELF_IP", "localhost")

	// Comma-separated glob patterns for subjects we are willing to issue for.
	// Empty means no restriction.
	Env_AllowedDomains = os.Getenv("ALLOWED_DOMAINS")
)

func EnvOrDefault(env, defaultVal string) string {
	if val := os.Getenv(env); val != "" {
		return val
	}
	return defaultVal
}

func MustEnvOrDefaultInt64(env string, defaultVal int64) int64 {
	val := os.Getenv(env)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		panic(fmt.Sprintf("failed to parse env var %s as int64: %s", env, err))
	}
	return parsed
}
