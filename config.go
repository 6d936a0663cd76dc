package pgcrud

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/yuku/pgcrud/internal/pgconst"
)

// Config holds the connection settings and pool bounds for a Manager.
//
// The manager copies the Config on construction and never mutates it. Pool
// bounds are not checked against each other here: they are handed to pgxpool
// as-is, and an unusable combination fails when the pool is built.
type Config struct {
	Host     string `envconfig:"DB_HOST" default:"localhost" validate:"required"`
	Port     int    `envconfig:"DB_PORT" default:"5432" validate:"gt=0,lt=65536"`
	Database string `envconfig:"DB_NAME" default:"testdb" validate:"required"`
	Username string `envconfig:"DB_USER" default:"postgres" validate:"required"`
	Password string `envconfig:"DB_PASSWORD" default:"password"`

	// MinConnections is the number of connections the pool tries to keep open.
	MinConnections int `envconfig:"DB_MIN_CONNECTIONS" default:"1"`

	// MaxConnections is the upper bound on connections checked out at once.
	MaxConnections int `envconfig:"DB_MAX_CONNECTIONS" default:"20"`

	// SSLMode is passed through as the sslmode connection parameter.
	// Empty leaves the driver default in place.
	SSLMode string `envconfig:"DB_SSLMODE" default:"disable"`

	// Additional connection parameters to append to connection string
	// e.g. "connect_timeout=10&application_name=pgcrud"
	AdditionalParams string `envconfig:"DB_PARAMS"`
}

// DefaultConfig returns the configuration used when no environment
// variables are set.
func DefaultConfig() Config {
	return Config{
		Host:           "localhost",
		Port:           pgconst.DefaultPort,
		Database:       "testdb",
		Username:       "postgres",
		Password:       "password",
		MinConnections: 1,
		MaxConnections: 20,
		SSLMode:        "disable",
	}
}

// ConnString builds a postgres:// URL understood by pgxpool.ParseConfig.
// The pool bounds travel as pool_min_conns and pool_max_conns.
func (c Config) ConnString() string {
	return c.url().String()
}

// String returns the connection URL with the password redacted.
func (c Config) String() string {
	return c.url().Redacted()
}

func (c Config) url() *url.URL {
	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Database,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.Username, c.Password)
	} else if c.Username != "" {
		u.User = url.User(c.Username)
	}

	params := url.Values{}
	params.Set("pool_min_conns", strconv.Itoa(c.MinConnections))
	params.Set("pool_max_conns", strconv.Itoa(c.MaxConnections))
	if c.SSLMode != "" {
		params.Set("sslmode", c.SSLMode)
	}
	u.RawQuery = params.Encode()
	if c.AdditionalParams != "" {
		u.RawQuery += "&" + c.AdditionalParams
	}
	return u
}

// LoadConfig reads a Config from the environment.
//
// The given dotenv files are loaded first; they never override variables
// that are already set. With no files, ".env" in the working directory is
// loaded if it exists. Values are then read with envconfig, falling back to
// DefaultConfig, and validated.
func LoadConfig(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return Config{}, fmt.Errorf("failed to load env files: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process environment configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
