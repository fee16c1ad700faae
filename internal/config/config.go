package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultCleanIntervalMinutes = 60
	defaultSizeThresholdMB      = 100
)

// Config is the full environment surface the bot declares. Several fields
// (Alist, JAV search, allowed users, cleanup) are placeholders for planned
// features and drive no logic yet; they are parsed and validated so a
// misconfigured deployment fails at startup rather than later.
type Config struct {
	// TelegramToken is the bot token. Optional when ParamPrefix is set, in
	// which case the token is fetched from SSM Parameter Store instead.
	TelegramToken string

	// WebhookSecretToken, when non-empty, must match the
	// X-Telegram-Bot-Api-Secret-Token header on every webhook call.
	WebhookSecretToken string

	// ParamPrefix is the SSM Parameter Store prefix for secrets.
	ParamPrefix string

	AlistBaseURL     string
	AlistToken       string
	AlistOfflineDirs []string
	JavSearchAPI     string
	AllowedUserIDs   map[int64]struct{}
	CleanInterval    time.Duration
	SizeThreshold    int64 // bytes
}

// Load reads and validates configuration from the process environment.
func Load() (Config, error) {
	cfg := Config{
		TelegramToken:      strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		WebhookSecretToken: strings.TrimSpace(os.Getenv("WEBHOOK_SECRET_TOKEN")),
		ParamPrefix:        strings.TrimSpace(os.Getenv("PARAM_PREFIX")),
		AlistBaseURL:       strings.TrimSpace(os.Getenv("ALIST_BASE_URL")),
		AlistToken:         strings.TrimSpace(os.Getenv("ALIST_TOKEN")),
		AlistOfflineDirs:   splitCSV(os.Getenv("ALIST_OFFLINE_DIRS")),
		JavSearchAPI:       strings.TrimSpace(os.Getenv("JAV_SEARCH_API")),
		CleanInterval:      time.Duration(envInt("CLEAN_INTERVAL_MINUTES", defaultCleanIntervalMinutes)) * time.Minute,
		SizeThreshold:      int64(envInt("SIZE_THRESHOLD", defaultSizeThresholdMB)) * 1024 * 1024,
	}

	if cfg.TelegramToken == "" && cfg.ParamPrefix == "" {
		return Config{}, errors.New("config: either TELEGRAM_TOKEN or PARAM_PREFIX must be set")
	}

	ids, err := parseUserIDs(os.Getenv("ALLOWED_USER_IDS"))
	if err != nil {
		return Config{}, err
	}
	cfg.AllowedUserIDs = ids

	return cfg, nil
}

// parseUserIDs parses a comma-separated list of numeric Telegram user IDs.
// A malformed entry is a configuration error, not something to silently skip.
func parseUserIDs(raw string) (map[int64]struct{}, error) {
	parts := splitCSV(raw)
	if len(parts) == 0 {
		return nil, nil
	}
	ids := make(map[int64]struct{}, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("config: ALLOWED_USER_IDS entry %q is not a number", p)
		}
		ids[id] = struct{}{}
	}
	return ids, nil
}

func splitCSV(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
