package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chainsift/pollwatch/internal/accounts"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Connection pool configuration
	config.MaxConns = 15
	config.MinConns = 2
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// UpsertPoll inserts or overwrites the row keyed by poll_id. The pgx pool is
// safe for the concurrent calls issued by the sink workers.
func (r *PostgresRepository) UpsertPoll(ctx context.Context, p *accounts.Poll) error {
	query := `
		INSERT INTO polls (poll_id, poll_owner, poll_name, poll_description,
			poll_start, poll_end, candidate_amount, candidate_winner, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (poll_id) DO UPDATE SET
			poll_owner = EXCLUDED.poll_owner,
			poll_name = EXCLUDED.poll_name,
			poll_description = EXCLUDED.poll_description,
			poll_start = EXCLUDED.poll_start,
			poll_end = EXCLUDED.poll_end,
			candidate_amount = EXCLUDED.candidate_amount,
			candidate_winner = EXCLUDED.candidate_winner,
			updated_at = NOW()
	`

	// Stored as BIGINT; the bit pattern survives the round trip.
	_, err := r.pool.Exec(ctx, query,
		int64(p.PollID), p.Owner[:], p.Name, p.Description,
		int64(p.Start), int64(p.End), int64(p.CandidateCount), p.Winner[:],
	)
	if err != nil {
		return fmt.Errorf("failed to upsert poll: %w", err)
	}

	return nil
}

// GetPoll retrieves a stored poll by its on-chain poll_id.
func (r *PostgresRepository) GetPoll(ctx context.Context, pollID uint64) (*PollRecord, error) {
	query := `
		SELECT id, poll_id, poll_owner, poll_name, poll_description,
			poll_start, poll_end, candidate_amount, candidate_winner,
			first_seen_at, updated_at
		FROM polls
		WHERE poll_id = $1
	`

	rec, err := scanPoll(r.pool.QueryRow(ctx, query, int64(pollID)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	return rec, nil
}

// ListPolls retrieves all stored polls ordered by poll_id.
func (r *PostgresRepository) ListPolls(ctx context.Context) ([]*PollRecord, error) {
	query := `
		SELECT id, poll_id, poll_owner, poll_name, poll_description,
			poll_start, poll_end, candidate_amount, candidate_winner,
			first_seen_at, updated_at
		FROM polls
		ORDER BY poll_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	defer rows.Close()

	var records []*PollRecord
	for rows.Next() {
		rec, err := scanPoll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate polls: %w", err)
	}

	return records, nil
}

// Close releases the connection pool.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPoll(row rowScanner) (*PollRecord, error) {
	rec := &PollRecord{}
	var pollID, start, end, candidates int64
	err := row.Scan(
		&rec.ID, &pollID, &rec.Owner, &rec.Name, &rec.Description,
		&start, &end, &candidates, &rec.Winner,
		&rec.FirstSeenAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.PollID = uint64(pollID)
	rec.Start = uint64(start)
	rec.End = uint64(end)
	rec.CandidateCount = uint64(candidates)
	return rec, nil
}
