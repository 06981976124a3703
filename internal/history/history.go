// Package history records the events a game dispatched, in memory, to gzip
// files or to PostgreSQL.
package history

import (
	"context"
	"fmt"

	"github.com/magefree/hearthstone-go/internal/game/rules"
	"go.uber.org/zap"
)

// Supported drivers.
const (
	DriverNone     = "none"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Config selects and configures a history backend.
type Config struct {
	Driver string
	// Directory is where the memory driver saves its journal on Close.
	// Empty means the journal is not persisted.
	Directory   string
	DatabaseURL string
}

// Recorder is a history backend a game can record into.
type Recorder interface {
	rules.Recorder
	Reset()
	Close(ctx context.Context) error
}

// Open builds the backend named by cfg.Driver for gameID.
func Open(ctx context.Context, cfg Config, gameID string, logger *zap.Logger) (Recorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Driver {
	case "", DriverNone:
		return Discard{}, nil
	case DriverMemory:
		return NewJournal(gameID, cfg.Directory, logger), nil
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("history driver %s needs a database url", DriverPostgres)
		}
		return OpenPostgres(ctx, cfg.DatabaseURL, gameID, logger)
	default:
		return nil, fmt.Errorf("unknown history driver %q", cfg.Driver)
	}
}

// Discard drops every entry.
type Discard struct{}

func (Discard) Record(rules.Entry)          {}
func (Discard) Reset()                      {}
func (Discard) Close(context.Context) error { return nil }
