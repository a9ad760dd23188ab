package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Port string

	// RedisAddr points at the durable chat store. Empty disables the
	// durable mirror entirely.
	RedisAddr string

	// UserServiceURL is the user-directory collaborator used to resolve
	// chat authors to durable user references. Empty disables lookups.
	UserServiceURL string

	// ExecAPIURL is the code-execution collaborator. Empty switches the
	// runner to stub mode.
	ExecAPIURL  string
	ExecTimeout time.Duration

	JWTSecret string

	// RoomIdleTTL enables reaping of idle empty rooms when positive.
	// Zero keeps the reference behavior: rooms live forever.
	RoomIdleTTL time.Duration
}

func Load() Config {
	return Config{
		Port:           getenv("PORT", "8080"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		UserServiceURL: os.Getenv("USER_SERVICE_URL"),
		ExecAPIURL:     os.Getenv("EXEC_API_URL"),
		ExecTimeout:    time.Duration(getenvInt("EXEC_TIMEOUT_MS", 15000)) * time.Millisecond,
		JWTSecret:      os.Getenv("JWT_SECRET"),
		RoomIdleTTL:    time.Duration(getenvInt("ROOM_IDLE_TTL_MIN", 0)) * time.Minute,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
