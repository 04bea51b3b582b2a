package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Port string `yaml:"port" env:"PORT" env-default:"8080"`

	DBDriver          string        `yaml:"db_driver" env:"DB_DRIVER" env-default:"sqlite"` // sqlite | postgres
	DBDSN             string        `yaml:"db_dsn" env:"DB_DSN" env-default:"file:hotels.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"`
	DBMaxOpenConns    int           `yaml:"db_max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	DBMaxIdleConns    int           `yaml:"db_max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	DBConnMaxLifetime time.Duration `yaml:"db_conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"30m"`

	SessionSecret string        `yaml:"session_secret" env:"SESSION_SECRET"`
	SessionTTL    time.Duration `yaml:"session_ttl" env:"SESSION_TTL" env-default:"24h"`
	SessionStore  string        `yaml:"session_store" env:"SESSION_STORE" env-default:"sql"` // sql | redis
	SessionCookie string        `yaml:"session_cookie" env:"SESSION_COOKIE" env-default:"hd_session"`
	CookieSecure  bool          `yaml:"cookie_secure" env:"COOKIE_SECURE" env-default:"false"`

	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`

	CSRFEnabled    bool `yaml:"csrf_enabled" env:"CSRF_ENABLED" env-default:"true"`
	RateLimit      int  `yaml:"rate_limit" env:"RATE_LIMIT" env-default:"120"`           // requests/minute per IP, 0 disables
	LoginRateLimit int  `yaml:"login_rate_limit" env:"LOGIN_RATE_LIMIT" env-default:"0"` // attempts/10min per IP, 0 disables
	BodyLimit      int  `yaml:"body_limit" env:"BODY_LIMIT" env-default:"1048576"`
	BcryptCost     int  `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"12"`

	LogFile      string `yaml:"log_file" env:"LOG_FILE"`
	LogLevel     string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	TemplatesDir string `yaml:"templates_dir" env:"TEMPLATES_DIR"` // load from disk with reload; embedded otherwise
	SeedDemo     bool   `yaml:"seed_demo" env:"SEED_DEMO" env-default:"false"`

	// set by Validate when SESSION_SECRET was empty
	EphemeralSecret bool `yaml:"-" env:"-"`
}

// Load reads .env (if any), then either the YAML file named by CONFIG_PATH or the
// process environment, and validates the result.
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	var cfg Config
	var err error
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver)
	}
	switch c.SessionStore {
	case "sql", "redis":
	default:
		return fmt.Errorf("SESSION_STORE must be sql or redis, got %q", c.SessionStore)
	}
	if c.DBDSN == "" {
		return errors.New("DB_DSN is required")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.SessionCookie == "" {
		c.SessionCookie = "hd_session"
	}
	if c.SessionSecret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("generate session secret: %w", err)
		}
		c.SessionSecret = hex.EncodeToString(buf)
		c.EphemeralSecret = true
	}
	return nil
}

func (c Config) Addr() string { return ":" + c.Port }
