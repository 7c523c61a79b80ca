package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chainsift/pollwatch/internal/accounts"
)

// InMemoryRepository is a map-backed Repository used in tests and local
// development. It implements the same upsert semantics as the Postgres
// repository: one row per poll_id, all non-key fields overwritten.
type InMemoryRepository struct {
	polls  map[uint64]*PollRecord
	nextID int64
	mu     sync.RWMutex
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		polls:  make(map[uint64]*PollRecord),
		nextID: 1,
	}
}

func (r *InMemoryRepository) UpsertPoll(ctx context.Context, p *accounts.Poll) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	existing, ok := r.polls[p.PollID]
	if !ok {
		existing = &PollRecord{
			ID:          r.nextID,
			PollID:      p.PollID,
			FirstSeenAt: now,
		}
		r.nextID++
		r.polls[p.PollID] = existing
	}

	existing.Owner = append([]byte(nil), p.Owner[:]...)
	existing.Name = p.Name
	existing.Description = p.Description
	existing.Start = p.Start
	existing.End = p.End
	existing.CandidateCount = p.CandidateCount
	existing.Winner = append([]byte(nil), p.Winner[:]...)
	existing.UpdatedAt = now

	return nil
}

func (r *InMemoryRepository) GetPoll(ctx context.Context, pollID uint64) (*PollRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.polls[pollID]
	if !ok {
		return nil, ErrPollNotFound
	}
	copied := *rec
	return &copied, nil
}

func (r *InMemoryRepository) ListPolls(ctx context.Context) ([]*PollRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*PollRecord, 0, len(r.polls))
	for _, rec := range r.polls {
		copied := *rec
		records = append(records, &copied)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].PollID < records[j].PollID
	})

	return records, nil
}

func (r *InMemoryRepository) Close() error {
	return nil
}
