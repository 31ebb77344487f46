package config

import (
	"net"
	"net/url"
	"strconv"
)

// DBConfig is the PostgreSQL configuration for the primary directory
// (the sales_reps table).
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"telesales"`
	Password string `env:"PASSWORD" envDefault:"telesales"`
	Name     string `env:"NAME"     envDefault:"telesales"`
	// SSLMode is 'disable' for local development; use 'require' in production.
	SSLMode string `env:"SSL_MODE" envDefault:"disable"`
	// RunMigrationsOnStart applies pending schema migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// DSN renders the connection URL. Credentials are escaped through url.URL so
// special characters in passwords survive.
func (c DBConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

// RedisConfig is the session record store configuration. URI may be a bare
// host:port or a redis:// / rediss:// URL; sentinel fields apply only when
// UseSentinel is set.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	DB                 int      `env:"DB"                   envDefault:"0"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
}
