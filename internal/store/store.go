package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/xkilldash9x/snakepilot/api/schemas"
)

// DBPool is an interface that abstracts the pgxpool.Pool to allow for mocking in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const (
	sqlCreateSessions = `
        CREATE TABLE IF NOT EXISTS game_sessions (
            id          UUID PRIMARY KEY,
            started_at  TIMESTAMPTZ NOT NULL,
            ended_at    TIMESTAMPTZ NOT NULL,
            final_score INTEGER NOT NULL,
            ticks       INTEGER NOT NULL,
            dispatched  INTEGER NOT NULL,
            dropped     INTEGER NOT NULL,
            failures    INTEGER NOT NULL
        );
    `
	sqlInsertSession = `
        INSERT INTO game_sessions (id, started_at, ended_at, final_score, ticks, dispatched, dropped, failures)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (id) DO NOTHING;
    `
	sqlRecentSessions = `
        SELECT id, started_at, ended_at, final_score, ticks, dispatched, dropped, failures
        FROM game_sessions
        ORDER BY ended_at DESC
        LIMIT $1;
    `
	sqlSummary = `
        SELECT COUNT(*), COALESCE(MAX(final_score), 0), COALESCE(AVG(final_score), 0)
        FROM game_sessions;
    `
)

// Summary aggregates every recorded session.
type Summary struct {
	Games     int
	BestScore int
	MeanScore float64
}

// Store persists game sessions in PostgreSQL.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a new store instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

// EnsureSchema creates the sessions table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, sqlCreateSessions); err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	return nil
}

// Record inserts a completed session. Re-recording the same session ID is a no-op.
func (s *Store) Record(ctx context.Context, rec schemas.SessionRecord) error {
	tag, err := s.pool.Exec(ctx, sqlInsertSession,
		rec.ID, rec.StartedAt.UTC(), rec.EndedAt.UTC(),
		rec.FinalScore, rec.Ticks, rec.Dispatched, rec.Dropped, rec.Failures,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session %s: %w", rec.ID, err)
	}
	if tag.RowsAffected() == 0 {
		s.log.Debug("Session already recorded", zap.String("session_id", rec.ID))
		return nil
	}
	s.log.Info("Session recorded",
		zap.String("session_id", rec.ID),
		zap.Int("final_score", rec.FinalScore),
		zap.Duration("duration", rec.Duration()),
	)
	return nil
}

// ListRecent returns up to limit sessions, most recently ended first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]schemas.SessionRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	rows, err := s.pool.Query(ctx, sqlRecentSessions, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []schemas.SessionRecord
	for rows.Next() {
		var rec schemas.SessionRecord
		if err := rows.Scan(
			&rec.ID, &rec.StartedAt, &rec.EndedAt, &rec.FinalScore,
			&rec.Ticks, &rec.Dispatched, &rec.Dropped, &rec.Failures,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		sessions = append(sessions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return sessions, nil
}

// Summarize aggregates all recorded sessions.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	var sum Summary
	if err := s.pool.QueryRow(ctx, sqlSummary).Scan(&sum.Games, &sum.BestScore, &sum.MeanScore); err != nil {
		return Summary{}, fmt.Errorf("failed to summarize sessions: %w", err)
	}
	return sum, nil
}

// Discard is a session recorder used when no database is configured.
type Discard struct {
	Logger *zap.Logger
}

func (d Discard) Record(_ context.Context, rec schemas.SessionRecord) error {
	if d.Logger != nil {
		d.Logger.Debug("No session store configured, discarding record", zap.String("session_id", rec.ID))
	}
	return nil
}
