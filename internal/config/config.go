package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"freshtrack/internal/expiry"
)

type Config struct {
	Port           string        `yaml:"port"`
	DBDSN          string        `yaml:"db_dsn"`
	LogFile        string        `yaml:"log_file"`
	TemplatesDir   string        `yaml:"templates_dir"`
	JWTSecret      string        `yaml:"jwt_secret"`
	TokenTTL       time.Duration `yaml:"token_ttl"`
	RedisURL       string        `yaml:"redis_url"`
	NotifySchedule string        `yaml:"notify_schedule"`
	TimeZone       string        `yaml:"time_zone"`
	SeedDemo       bool          `yaml:"seed_demo"`
	Policy         expiry.Policy `yaml:"-"`
}

// fileConfig mirrors the YAML layout; the low-stock default is a string so decimals survive.
type fileConfig struct {
	Config `yaml:",inline"`
	Policy struct {
		expiry.Policy   `yaml:",inline"`
		DefaultLowStock string `yaml:"default_low_stock"`
	} `yaml:"policy"`
}

func defaults() Config {
	return Config{
		Port:           "8080",
		DBDSN:          "freshtrack.db",
		LogFile:        "./freshtrack.log",
		TemplatesDir:   "./web/templates",
		TokenTTL:       7 * 24 * time.Hour,
		NotifySchedule: "0 8 * * *",
		TimeZone:       "Local",
		SeedDemo:       true,
		Policy:         expiry.DefaultPolicy(),
	}
}

// Load builds the config from defaults, then CONFIG_FILE (YAML), then environment variables.
// It exits the process on invalid values.
func Load() Config {
	cfg, err := load(os.Getenv("CONFIG_FILE"), os.Getenv)
	if err != nil {
		log.Fatalf("[config] %v", err)
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s REDIS=%t NOTIFY_SCHEDULE=%q TZ=%s POLICY=%d/%d/%d low=%s notify=%d soon=%d retain=%d",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.RedisURL != "", cfg.NotifySchedule, cfg.TimeZone,
		cfg.Policy.CriticalDays, cfg.Policy.WarningDays, cfg.Policy.AttentionDays, cfg.Policy.DefaultLowStock,
		cfg.Policy.NotifyWindowDays, cfg.Policy.SoonWindowDays, cfg.Policy.RetentionDays)
	return cfg
}

func load(path string, getenv func(string) string) (Config, error) {
	cfg := defaults()
	if path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := overlayEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}
	if cfg.JWTSecret == "" {
		// tokens do not survive a restart without a configured secret
		cfg.JWTSecret = "dev-" + strconv.FormatInt(time.Now().UnixNano(), 36)
		log.Printf("[config] JWT_SECRET not set, using an ephemeral secret")
	}
	if _, err := cfg.Location(); err != nil {
		return Config{}, err
	}
	if err := cfg.Policy.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func overlayFile(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	fc := fileConfig{Config: *cfg}
	fc.Policy.Policy = cfg.Policy
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	*cfg = fc.Config
	cfg.Policy = fc.Policy.Policy
	if fc.Policy.DefaultLowStock != "" {
		d, err := decimal.NewFromString(fc.Policy.DefaultLowStock)
		if err != nil {
			return fmt.Errorf("policy.default_low_stock: %w", err)
		}
		cfg.Policy.DefaultLowStock = d
	}
	return nil
}

func overlayEnv(cfg *Config, getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	str("PORT", &cfg.Port)
	str("DB_DSN", &cfg.DBDSN)
	str("LOG_FILE", &cfg.LogFile)
	str("TEMPLATES_DIR", &cfg.TemplatesDir)
	str("JWT_SECRET", &cfg.JWTSecret)
	str("REDIS_URL", &cfg.RedisURL)
	str("TZ_NAME", &cfg.TimeZone)
	// an explicit "off" disables the scheduled notifier
	if v := getenv("NOTIFY_SCHEDULE"); v != "" {
		cfg.NotifySchedule = v
		if v == "off" {
			cfg.NotifySchedule = ""
		}
	}

	if v := getenv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TOKEN_TTL: %w", err)
		}
		cfg.TokenTTL = d
	}
	if v := getenv("SEED_DEMO"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SEED_DEMO: %w", err)
		}
		cfg.SeedDemo = b
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"CRITICAL_DAYS", &cfg.Policy.CriticalDays},
		{"WARNING_DAYS", &cfg.Policy.WarningDays},
		{"ATTENTION_DAYS", &cfg.Policy.AttentionDays},
		{"NOTIFY_WINDOW_DAYS", &cfg.Policy.NotifyWindowDays},
		{"SOON_WINDOW_DAYS", &cfg.Policy.SoonWindowDays},
		{"RETENTION_DAYS", &cfg.Policy.RetentionDays},
	}
	for _, e := range ints {
		v := getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", e.key, err)
		}
		*e.dst = n
	}
	if v := getenv("LOW_STOCK_DEFAULT"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("LOW_STOCK_DEFAULT: %w", err)
		}
		cfg.Policy.DefaultLowStock = d
	}
	return nil
}

// Location resolves TimeZone; "Local" and "" mean the process zone.
func (c Config) Location() (*time.Location, error) {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("TZ_NAME: %w", err)
	}
	return loc, nil
}

// Retention is the notification retention window.
func (c Config) Retention() time.Duration {
	return time.Duration(c.Policy.RetentionDays) * 24 * time.Hour
}
