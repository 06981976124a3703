package history

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/magefree/hearthstone-go/internal/game/rules"
	"go.uber.org/zap"
)

//go:embed schema.sql
var schema string

var historyColumns = []string{
	"game_id", "run", "seq", "event_id", "kind", "state",
	"player_id", "value", "source_id", "target_id", "card_id",
}

// PostgresStore buffers history entries and copies them into the
// event_history table on Flush. Every Reset starts a new run so the rows of
// a restarted game do not collide with the previous ones.
type PostgresStore struct {
	logger *zap.Logger
	pool   *pgxpool.Pool
	gameID string

	mu      sync.Mutex
	run     int
	pending []rules.Entry
}

// OpenPostgres connects to databaseURL, applies the schema and picks the
// next run number for gameID.
func OpenPostgres(ctx context.Context, databaseURL, gameID string, logger *zap.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply history schema: %w", err)
	}

	var run int
	err = pool.QueryRow(ctx,
		"SELECT COALESCE(MAX(run), 0) + 1 FROM event_history WHERE game_id = $1", gameID,
	).Scan(&run)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to read history run: %w", err)
	}

	logger.Info("history store opened",
		zap.String("game_id", gameID),
		zap.Int("run", run),
	)
	return &PostgresStore{
		logger: logger,
		pool:   pool,
		gameID: gameID,
		run:    run,
	}, nil
}

// Record buffers an entry until the next Flush.
func (s *PostgresStore) Record(entry rules.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = append(s.pending, entry)
}

// Reset drops unflushed entries and starts a new run.
func (s *PostgresStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = nil
	s.run++
}

// Run returns the current run number.
func (s *PostgresStore) Run() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.run
}

// Flush copies the buffered entries into the database in one transaction.
func (s *PostgresStore) Flush(ctx context.Context) error {
	s.mu.Lock()
	batch := s.pending
	run := s.run
	s.pending = nil
	s.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	rows := make([][]any, len(batch))
	for i, e := range batch {
		rows[i] = []any{
			s.gameID, run, e.Seq, e.EventID, e.Kind.String(), e.State.String(),
			e.PlayerID, e.Value, e.SourceID, e.TargetID, e.CardID,
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		s.requeue(run, batch)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"event_history"}, historyColumns, pgx.CopyFromRows(rows))
	if err != nil {
		s.requeue(run, batch)
		return fmt.Errorf("failed to copy history: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		s.requeue(run, batch)
		return fmt.Errorf("failed to commit history: %w", err)
	}

	s.logger.Debug("history flushed",
		zap.String("game_id", s.gameID),
		zap.Int("run", run),
		zap.Int64("rows", n),
	)
	return nil
}

// requeue puts a failed batch back in front of anything recorded since,
// unless the store was reset in the meantime.
func (s *PostgresStore) requeue(run int, batch []rules.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.run != run {
		return
	}
	s.pending = append(batch, s.pending...)
}

// Kinds reads back the kinds recorded for run in sequence order.
func (s *PostgresStore) Kinds(ctx context.Context, run int) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT kind FROM event_history WHERE game_id = $1 AND run = $2 ORDER BY seq", s.gameID, run,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	kinds, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan history: %w", err)
	}
	return kinds, nil
}

// Close flushes what is buffered and closes the pool.
func (s *PostgresStore) Close(ctx context.Context) error {
	defer s.pool.Close()
	return s.Flush(ctx)
}
