package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx connection pool and verifies the database is reachable.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	poolCfg.ConnConfig.Tracer = &metricsTracer{}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Database connected", "min_conns", poolCfg.MinConns, "max_conns", poolCfg.MaxConns)
	return pool, nil
}

const (
	// migrationLockID is a PostgreSQL advisory lock ID for coordinating
	// migrations across instances. Value: 0x636772617068 ("cgraph" in ASCII hex).
	migrationLockID             = 0x636772617068
	migrationLockReleaseTimeout = 5 * time.Second
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS communities (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT UNIQUE NOT NULL,
		total_voting_potential BIGINT NOT NULL DEFAULT 0 CHECK (total_voting_potential >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS memberships (
		user_id UUID NOT NULL,
		community_id UUID NOT NULL REFERENCES communities(id) ON DELETE CASCADE,
		reputation BIGINT NOT NULL DEFAULT 25,
		credits BIGINT NOT NULL DEFAULT 5 CHECK (credits >= 0),
		max_votes BIGINT NOT NULL DEFAULT 2 CHECK (max_votes >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, community_id)
	)`,
	`CREATE TABLE IF NOT EXISTS proposals (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		community_id UUID NOT NULL REFERENCES communities(id) ON DELETE CASCADE,
		proposer_id UUID NOT NULL,
		target TEXT NOT NULL CHECK (target IN ('NODE', 'EDGE')),
		kind TEXT NOT NULL CHECK (kind IN ('CREATE', 'UPDATE', 'DELETE')),
		status TEXT NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING', 'APPROVED', 'REJECTED')),
		payload JSONB NOT NULL,
		target_graph_id TEXT NOT NULL DEFAULT '',
		linked_graph_id TEXT NOT NULL DEFAULT '',
		upvotes BIGINT NOT NULL DEFAULT 0 CHECK (upvotes >= 0),
		downvotes BIGINT NOT NULL DEFAULT 0 CHECK (downvotes >= 0),
		decided_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_proposals_community ON proposals(community_id)`,
	`CREATE TABLE IF NOT EXISTS votes (
		proposal_id UUID NOT NULL REFERENCES proposals(id) ON DELETE CASCADE,
		user_id UUID NOT NULL,
		magnitude BIGINT NOT NULL CHECK (magnitude <> 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (proposal_id, user_id)
	)`,
}

// RunMigrations applies the schema under an advisory lock so concurrent
// instances do not race each other on startup.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection for migration: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", migrationLockID); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	defer func() {
		unlockCtx, cancel := context.WithTimeout(context.Background(), migrationLockReleaseTimeout)
		defer cancel()
		if _, err := conn.Exec(unlockCtx, "SELECT pg_advisory_unlock($1)", migrationLockID); err != nil {
			slog.Error("failed to release migration lock", "error", err)
		}
	}()

	slog.Info("running database migrations")
	for _, migration := range migrations {
		if _, err := conn.Exec(ctx, migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}
