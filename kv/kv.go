// Package kv is the key-value layer the persistence bridge writes through.
// Each key holds one opaque value that is always replaced whole.
package kv

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get for a key that was never written or was deleted.
var ErrNotFound = errors.New("kv: key not found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys lists every key starting with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Config picks and addresses a backend.
type Config struct {
	Driver    string `yaml:"driver" validate:"oneof=memory sqlite redis"`
	DSN       string `yaml:"dsn" validate:"required_if=Driver sqlite"`
	RedisURL  string `yaml:"redis_url" validate:"required_if=Driver redis"`
	Namespace string `yaml:"namespace"`
}

// Open connects the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverMemory, "":
		return NewMemory(), nil
	case DriverSQLite:
		return OpenSQLite(cfg.DSN)
	case DriverRedis:
		return OpenRedis(ctx, cfg.RedisURL, cfg.Namespace)
	default:
		return nil, fmt.Errorf("kv: unknown driver %q", cfg.Driver)
	}
}
