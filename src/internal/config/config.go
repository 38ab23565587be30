package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	defaultEnv             = "development"
	defaultHTTPAddr        = ":8080"
	defaultChannelID       = "LedgerApp"
	defaultChannelKey      = "LedgerKey001"
	defaultJournalDriver   = JournalMemory
	defaultSQLitePath      = "ledger.db"
	defaultShutdownTimeout = 15 * time.Second
)

const (
	JournalMemory   = "memory"
	JournalPostgres = "postgres"
	JournalSQLite   = "sqlite"
)

type Config struct {
	Env              string
	LogLevel         string
	HTTPAddr         string
	ChannelID        string
	ChannelKey       string
	ChannelKeyHash   string
	JournalDriver    string
	DatabaseDSN      string
	SQLitePath       string
	MigrationsDir    string
	MetricsEnabled   bool
	StrictInvariants bool
	ShutdownTimeout  time.Duration
}

// fileConfig mirrors Config for the optional TOML file.
type fileConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTP     struct {
		Addr            string `toml:"addr"`
		ShutdownTimeout string `toml:"shutdown_timeout"`
		Metrics         *bool  `toml:"metrics"`
	} `toml:"http"`
	Auth struct {
		ChannelID      string `toml:"channel_id"`
		ChannelKey     string `toml:"channel_key"`
		ChannelKeyHash string `toml:"channel_key_hash"`
	} `toml:"auth"`
	Journal struct {
		Driver        string `toml:"driver"`
		DSN           string `toml:"dsn"`
		SQLitePath    string `toml:"sqlite_path"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"journal"`
	Ledger struct {
		Strict *bool `toml:"strict"`
	} `toml:"ledger"`
}

// Load resolves configuration from defaults, then the TOML file at path (or
// LEDGER_CONFIG when path is empty), then a .env file, then the process
// environment. Later sources win.
func Load(path string) (Config, error) {
	cfg := Config{
		Env:             defaultEnv,
		HTTPAddr:        defaultHTTPAddr,
		ChannelID:       defaultChannelID,
		ChannelKey:      defaultChannelKey,
		JournalDriver:   defaultJournalDriver,
		SQLitePath:      defaultSQLitePath,
		MigrationsDir:   filepath.Join("src", "migrations"),
		MetricsEnabled:  true,
		ShutdownTimeout: defaultShutdownTimeout,
	}
	var strictSet bool

	if strings.TrimSpace(path) == "" {
		path = strings.TrimSpace(os.Getenv("LEDGER_CONFIG"))
	}
	if path != "" {
		set, err := applyFile(&cfg, path)
		if err != nil {
			return Config{}, err
		}
		strictSet = set
	}

	// .env is optional; variables already in the environment are kept
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	overrideString(&cfg.Env, "APP_ENV")
	overrideString(&cfg.LogLevel, "LOG_LEVEL")
	overrideString(&cfg.HTTPAddr, "HTTP_ADDR")
	overrideString(&cfg.ChannelID, "CHANNEL_ID")
	overrideString(&cfg.ChannelKey, "CHANNEL_KEY")
	overrideString(&cfg.ChannelKeyHash, "CHANNEL_KEY_HASH")
	overrideString(&cfg.JournalDriver, "JOURNAL_DRIVER")
	overrideString(&cfg.DatabaseDSN, "DATABASE_DSN")
	overrideString(&cfg.SQLitePath, "SQLITE_PATH")
	overrideString(&cfg.MigrationsDir, "MIGRATIONS_DIR")

	if err := overrideBool(&cfg.MetricsEnabled, "METRICS_ENABLED"); err != nil {
		return Config{}, err
	}
	if raw, ok := lookup("LEDGER_STRICT"); ok {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("LEDGER_STRICT: %w", err)
		}
		cfg.StrictInvariants = v
		strictSet = true
	}
	if raw, ok := lookup("SHUTDOWN_TIMEOUT"); ok {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.ShutdownTimeout = d
	}

	cfg.Env = strings.ToLower(cfg.Env)
	cfg.JournalDriver = strings.ToLower(cfg.JournalDriver)
	if !strictSet {
		cfg.StrictInvariants = cfg.IsDevelopment()
	}
	if cfg.DatabaseDSN != "" {
		cfg.DatabaseDSN = normalizeConnectionString(cfg.DatabaseDSN)
	}

	return cfg, nil
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "local"
}

func (c Config) Validate() error {
	var errs []string

	switch c.JournalDriver {
	case JournalMemory:
	case JournalPostgres:
		if c.DatabaseDSN == "" {
			errs = append(errs, "DATABASE_DSN is required for the postgres journal")
		}
	case JournalSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, "SQLITE_PATH is required for the sqlite journal")
		}
	default:
		errs = append(errs, fmt.Sprintf("unknown journal driver %q", c.JournalDriver))
	}

	if c.HTTPAddr == "" {
		errs = append(errs, "HTTP_ADDR is required")
	}
	if c.ChannelID == "" || (c.ChannelKey == "" && c.ChannelKeyHash == "") {
		errs = append(errs, "CHANNEL_ID and CHANNEL_KEY or CHANNEL_KEY_HASH are required")
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, "SHUTDOWN_TIMEOUT must be positive")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func applyFile(cfg *Config, path string) (bool, error) {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return false, fmt.Errorf("read config file %q: %w", path, err)
	}

	setString(&cfg.Env, fc.Env)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.HTTPAddr, fc.HTTP.Addr)
	setString(&cfg.ChannelID, fc.Auth.ChannelID)
	setString(&cfg.ChannelKey, fc.Auth.ChannelKey)
	setString(&cfg.ChannelKeyHash, fc.Auth.ChannelKeyHash)
	setString(&cfg.JournalDriver, fc.Journal.Driver)
	setString(&cfg.DatabaseDSN, fc.Journal.DSN)
	setString(&cfg.SQLitePath, fc.Journal.SQLitePath)
	setString(&cfg.MigrationsDir, fc.Journal.MigrationsDir)

	if fc.HTTP.Metrics != nil {
		cfg.MetricsEnabled = *fc.HTTP.Metrics
	}
	if raw := strings.TrimSpace(fc.HTTP.ShutdownTimeout); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return false, fmt.Errorf("config file http.shutdown_timeout: %w", err)
		}
		cfg.ShutdownTimeout = d
	}

	if fc.Ledger.Strict != nil {
		cfg.StrictInvariants = *fc.Ledger.Strict
		return true, nil
	}
	return false, nil
}

func lookup(key string) (string, bool) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

func overrideString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func overrideBool(dst *bool, key string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = v
	return nil
}

func setString(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}

// normalizeConnectionString turns "Host=..;Port=..;Database=.." style strings
// into lib/pq key/value form. URLs and strings already in pq form pass through.
func normalizeConnectionString(raw string) string {
	if strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://") || !strings.Contains(raw, ";") {
		return raw
	}

	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
