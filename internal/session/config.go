package session

import (
	"os"
	"strconv"
	"time"
)

const (
	StyleUUID       = "uuid"
	StyleSimpleUUID = "simple-uuid"
	StyleRandom64   = "random-64"
	StyleKSUID      = "ksuid"
	StyleJWT        = "jwt"

	StoreMemory = "memory"
	StoreDB     = "db"
)

type Config struct {
	TokenName string
	Style     string
	// Timeout <= 0 means sessions never expire.
	Timeout time.Duration
	// Secret signs tokens when Style is jwt.
	Secret string
	Store  string
}

// ConfigFromEnv reads TOKEN_* and SESSION_STORE.
func ConfigFromEnv() Config {
	name := os.Getenv("TOKEN_NAME")
	if name == "" {
		name = "satoken"
	}
	style := os.Getenv("TOKEN_STYLE")
	if style == "" {
		style = StyleUUID
	}
	timeout := 30 * 24 * time.Hour
	if v, err := strconv.ParseInt(os.Getenv("TOKEN_TIMEOUT"), 10, 64); err == nil {
		timeout = time.Duration(v) * time.Second
	}
	store := os.Getenv("SESSION_STORE")
	if store == "" {
		store = StoreMemory
	}
	return Config{
		TokenName: name,
		Style:     style,
		Timeout:   timeout,
		Secret:    os.Getenv("TOKEN_SECRET"),
		Store:     store,
	}
}
