package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	BackendURL     string
	DBPath         string
	BoardsPath     string
	TemplateDir    string
	SessionSecret  string
	SessionTTL     time.Duration
	PageLimit      int
	BackendTimeout time.Duration
	// CookieSecure marks the session cookie Secure; set it behind TLS.
	CookieSecure bool

	// GeneratedSecret is set when SESSION_SECRET was empty and a random one was
	// used; sessions then do not survive a restart.
	GeneratedSecret bool
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

// Load reads files (".env" when none are given) into the environment and builds the
// Config from it. A missing env file is not an error.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	cfg := Config{
		Port:          getEnv("PORT", "8080"),
		BackendURL:    getEnv("BACKEND_URL", "http://localhost:4000"),
		DBPath:        getEnv("DB_PATH", "clubweb.db"),
		BoardsPath:    getEnv("BOARDS_PATH", ""),
		TemplateDir:   getEnv("TEMPLATE_DIR", ""),
		SessionSecret: getEnv("SESSION_SECRET", ""),
	}

	var err error
	if cfg.SessionTTL, err = duration("SESSION_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.BackendTimeout, err = duration("BACKEND_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.PageLimit, err = positiveInt("PAGE_LIMIT", 5); err != nil {
		return Config{}, err
	}
	if cfg.CookieSecure, err = boolean("COOKIE_SECURE", false); err != nil {
		return Config{}, err
	}
	if cfg.SessionSecret == "" {
		if cfg.SessionSecret, err = randomSecret(); err != nil {
			return Config{}, err
		}
		cfg.GeneratedSecret = true
	}
	return cfg, nil
}

func (c Config) Addr() string { return ":" + c.Port }

func duration(key string, fallback time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("config: %s: invalid duration %q", key, v)
	}
	return d, nil
}

func positiveInt(key string, fallback int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("config: %s: invalid number %q", key, v)
	}
	return n, nil
}

func boolean(key string, fallback bool) (bool, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s: invalid boolean %q", key, v)
	}
	return b, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("config: session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
