package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dinerozz/focus-guard-backend/config"
)

// ErrNotFound is returned by Get when no record exists under the key.
var ErrNotFound = errors.New("record not found")

// Well-known record keys. Records are opaque JSON blobs; services
// read-modify-write them as whole objects and merge fields rather than
// blind-overwriting, since export/import collaborators may touch the same keys.
const (
	KeyLedger       = "ledger"
	KeySchedule     = "schedule"
	KeyGoals        = "goals"
	KeyIntervention = "intervention"
	KeyPairing      = "pairing"
)

// Store is the async key/value persistence collaborator. Values are opaque
// structured records marshalled to JSON by the driver.
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
	Delete(ctx context.Context, key string) error
	Health(ctx context.Context) error
	Close() error
}

// New selects a driver by config. Postgres is the durable default; redis and
// memory exist for lighter deployments and tests.
func New(cfg *config.Config) (Store, error) {
	switch cfg.StoreDriver {
	case "postgres":
		return NewPostgresStore(cfg.DB)
	case "redis":
		s := NewRedisStore(cfg.Redis)
		if s == nil {
			return nil, fmt.Errorf("failed to connect to redis store")
		}
		return s, nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.StoreDriver)
	}
}
