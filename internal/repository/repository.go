package repository

import (
	"context"
	"errors"
	"time"

	"github.com/chainsift/pollwatch/internal/accounts"
)

var ErrPollNotFound = errors.New("poll not found")

// PollRecord is the stored projection of a decoded poll account. PollID is
// unique; every other field is overwritten on upsert.
type PollRecord struct {
	ID             int64
	PollID         uint64
	Owner          []byte
	Name           string
	Description    string
	Start          uint64
	End            uint64
	CandidateCount uint64
	Winner         []byte
	FirstSeenAt    time.Time
	UpdatedAt      time.Time
}

// Repository defines the persistence sink for decoded polls and the read
// surface used by the CLI. Implementations must tolerate concurrent
// UpsertPoll calls.
type Repository interface {
	// UpsertPoll inserts the poll or, if a row with the same poll_id exists,
	// overwrites all non-key fields with the latest decoded values.
	UpsertPoll(ctx context.Context, p *accounts.Poll) error

	// GetPoll returns the stored record for a poll_id.
	GetPoll(ctx context.Context, pollID uint64) (*PollRecord, error)

	// ListPolls returns all stored polls ordered by poll_id.
	ListPolls(ctx context.Context) ([]*PollRecord, error)

	// Utility
	Close() error
}
