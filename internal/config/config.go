// Package config loads application configuration from a config file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/snipecord/internal/domain/model"
)

// ErrNoWatches is returned when the config lists no section indexes.
var ErrNoWatches = errors.New("indexes must list at least one section index")

// DefaultSOCBaseURL is the Rutgers Schedule of Classes API root.
const DefaultSOCBaseURL = "https://sis.rutgers.edu/soc"

// Config holds the validated application configuration.
type Config struct {
	Webhook string
	// Mention is prepended to every alert, e.g. "<@user id>" or "<@&role id>".
	Mention string
	// RepeatTimeout is the cooldown, in ticks, before an index that stays
	// open is announced again.
	RepeatTimeout uint32
	Year          string
	Term          string
	Campus        string
	Level         string
	Indexes       []string

	PollInterval   time.Duration
	// ListenAddr enables the status server when set. cmd/healthcheck needs it.
	ListenAddr     string
	DBPath         string
	NATSURL        string
	TelegramToken  string
	TelegramChatID int64
	LogLevel       string
	LogFormat      string
	SOCBaseURL     string
}

// fileConfig mirrors the on-disk layout. Pointer fields distinguish
// "absent" from the zero value so defaults can be applied.
type fileConfig struct {
	Webhook        string   `json:"webhook" toml:"webhook"`
	Mention        *string  `json:"mention" toml:"mention"`
	RepeatTimeout  *uint32  `json:"repeat_timeout" toml:"repeat_timeout"`
	Year           string   `json:"year" toml:"year"`
	Term           string   `json:"term" toml:"term"`
	Campus         string   `json:"campus" toml:"campus"`
	Level          string   `json:"level" toml:"level"`
	Indexes        []string `json:"indexes" toml:"indexes"`
	PollInterval   string   `json:"poll_interval" toml:"poll_interval"`
	ListenAddr     string   `json:"listen_addr" toml:"listen_addr"`
	DBPath         string   `json:"db_path" toml:"db_path"`
	NATSURL        string   `json:"nats_url" toml:"nats_url"`
	TelegramToken  string   `json:"telegram_token" toml:"telegram_token"`
	TelegramChatID int64    `json:"telegram_chat_id" toml:"telegram_chat_id"`
	LogLevel       string   `json:"log_level" toml:"log_level"`
	LogFormat      string   `json:"log_format" toml:"log_format"`
	SOCBaseURL     string   `json:"soc_base_url" toml:"soc_base_url"`
}

// Query returns the SOC query parameters shared by both endpoints.
func (c *Config) Query() model.Query {
	return model.Query{
		Year:   c.Year,
		Term:   c.Term,
		Campus: c.Campus,
		Level:  c.Level,
	}
}

// HasTelegram returns true when both a bot token and a chat ID are configured.
func (c *Config) HasTelegram() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

// Load reads the config file at path, applies SNIPECORD_ environment
// overrides and returns a validated Config.
// Supported formats are JSON (default), YAML (.yaml, .yml) and TOML (.toml).
// Defaults: repeat_timeout 60, poll_interval 1s, log_level info,
// log_format text, soc_base_url https://sis.rutgers.edu/soc.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	fc, err := decodeFile(path, data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := applyEnv(fc); err != nil {
		return nil, err
	}

	return validate(fc)
}

// applyEnv overrides file values with any SNIPECORD_ variables that are set.
func applyEnv(fc *fileConfig) error {
	if v, ok := os.LookupEnv("SNIPECORD_WEBHOOK"); ok {
		fc.Webhook = v
	}
	if v, ok := os.LookupEnv("SNIPECORD_MENTION"); ok {
		fc.Mention = &v
	}
	if v, ok := os.LookupEnv("SNIPECORD_POLL_INTERVAL"); ok {
		fc.PollInterval = v
	}
	if v, ok := os.LookupEnv("SNIPECORD_LISTEN_ADDR"); ok {
		fc.ListenAddr = v
	}
	if v, ok := os.LookupEnv("SNIPECORD_DB_PATH"); ok {
		fc.DBPath = v
	}
	if v, ok := os.LookupEnv("SNIPECORD_NATS_URL"); ok {
		fc.NATSURL = v
	}
	if v, ok := os.LookupEnv("SNIPECORD_TELEGRAM_TOKEN"); ok {
		fc.TelegramToken = v
	}
	if v, ok := os.LookupEnv("SNIPECORD_TELEGRAM_CHAT_ID"); ok {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("SNIPECORD_TELEGRAM_CHAT_ID must be an integer chat id: %w", err)
		}
		fc.TelegramChatID = id
	}
	if v, ok := os.LookupEnv("SNIPECORD_LOG_LEVEL"); ok {
		fc.LogLevel = v
	}
	return nil
}

func validate(fc *fileConfig) (*Config, error) {
	cfg := &Config{
		Webhook:        strings.TrimSpace(fc.Webhook),
		RepeatTimeout:  60,
		Year:           strings.TrimSpace(fc.Year),
		Term:           strings.TrimSpace(fc.Term),
		Campus:         strings.ToUpper(strings.TrimSpace(fc.Campus)),
		Level:          strings.ToUpper(strings.TrimSpace(fc.Level)),
		PollInterval:   time.Second,
		ListenAddr:     fc.ListenAddr,
		DBPath:         fc.DBPath,
		NATSURL:        fc.NATSURL,
		TelegramToken:  fc.TelegramToken,
		TelegramChatID: fc.TelegramChatID,
		LogLevel:       "info",
		LogFormat:      "text",
		SOCBaseURL:     DefaultSOCBaseURL,
	}

	if fc.Mention != nil {
		cfg.Mention = *fc.Mention
	}
	if fc.RepeatTimeout != nil {
		cfg.RepeatTimeout = *fc.RepeatTimeout
	}

	if cfg.Webhook == "" && !cfg.HasTelegram() {
		return nil, errors.New("webhook is required unless telegram_token and telegram_chat_id are set")
	}
	if cfg.Webhook != "" {
		if err := validateURL("webhook", cfg.Webhook); err != nil {
			return nil, err
		}
	}

	if _, err := strconv.Atoi(cfg.Year); err != nil || len(cfg.Year) != 4 {
		return nil, fmt.Errorf("year must be a four-digit year, got %q", fc.Year)
	}
	switch cfg.Term {
	case "0", "1", "7", "9":
	default:
		return nil, fmt.Errorf("term must be one of 0, 1, 7, 9, got %q", fc.Term)
	}
	if cfg.Campus == "" {
		return nil, errors.New("campus is required")
	}
	if cfg.Level == "" {
		return nil, errors.New("level is required")
	}

	cfg.Indexes = dedupeIndexes(fc.Indexes)
	if len(cfg.Indexes) == 0 {
		return nil, ErrNoWatches
	}

	if fc.PollInterval != "" {
		d, err := time.ParseDuration(fc.PollInterval)
		if err != nil {
			return nil, fmt.Errorf("poll_interval has invalid duration %q: %w", fc.PollInterval, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("poll_interval must be positive, got %q", fc.PollInterval)
		}
		cfg.PollInterval = d
	}

	if fc.LogLevel != "" {
		switch lvl := strings.ToLower(fc.LogLevel); lvl {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = lvl
		default:
			return nil, fmt.Errorf("log_level must be debug, info, warn or error, got %q", fc.LogLevel)
		}
	}
	if fc.LogFormat != "" {
		switch f := strings.ToLower(fc.LogFormat); f {
		case "text", "json":
			cfg.LogFormat = f
		default:
			return nil, fmt.Errorf("log_format must be text or json, got %q", fc.LogFormat)
		}
	}

	if fc.SOCBaseURL != "" {
		if err := validateURL("soc_base_url", fc.SOCBaseURL); err != nil {
			return nil, err
		}
		cfg.SOCBaseURL = strings.TrimRight(fc.SOCBaseURL, "/")
	}

	return cfg, nil
}

// dedupeIndexes trims each index and drops blanks and repeats, keeping the
// first occurrence order.
func dedupeIndexes(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, idx := range raw {
		idx = strings.TrimSpace(idx)
		if idx == "" {
			continue
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		out = append(out, idx)
	}
	return out
}

func validateURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", key, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https scheme, got %q", key, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", key)
	}
	return nil
}
