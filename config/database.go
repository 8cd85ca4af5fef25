package config

import (
	"fmt"
	"net"
)

// DBConfig contains PostgreSQL configuration for the postgres session
// store backend.
type DBConfig struct {
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"coursehub"`
	Password string `env:"PASSWORD" envDefault:"coursehub"`
	Name     string `env:"NAME"     envDefault:"coursehub"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
}

// DSN builds a postgres connection string from the config.
func (d DBConfig) DSN() string {
	hostPort := net.JoinHostPort(d.Host, fmt.Sprintf("%d", d.Port))
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		d.User, d.Password, hostPort, d.Name, d.SSLMode)
}

// RedisConfig contains Redis configuration for the redis session store
// backend.
type RedisConfig struct {
	Addr     string `env:"ADDR"     envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`
}
