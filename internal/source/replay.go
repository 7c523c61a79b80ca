package source

import (
	"sync"

	"github.com/google/uuid"
)

// ReplaySource is a channel-backed Source fed by the caller. It stands in
// for the NATS transport in tests and local development, delivering pushed
// updates in order.
type ReplaySource struct {
	out      chan Update
	once     sync.Once
	teardown int
	mu       sync.Mutex
}

func NewReplaySource(buffer int) *ReplaySource {
	return &ReplaySource{
		out: make(chan Update, buffer),
	}
}

// Push delivers one raw account payload to the subscriber.
func (s *ReplaySource) Push(pubkey string, slot uint64, data []byte) {
	s.out <- Update{
		ID:     uuid.NewString(),
		Pubkey: pubkey,
		Slot:   slot,
		Data:   data,
	}
}

// Close ends the sequence, as if the transport closed on its own.
func (s *ReplaySource) Close() {
	s.once.Do(func() {
		close(s.out)
	})
}

func (s *ReplaySource) Updates() <-chan Update {
	return s.out
}

// Unsubscribe closes the sequence and counts invocations so tests can assert
// teardown happened exactly once.
func (s *ReplaySource) Unsubscribe() error {
	s.mu.Lock()
	s.teardown++
	s.mu.Unlock()
	s.Close()
	return nil
}

// TeardownCalls reports how many times Unsubscribe has been invoked.
func (s *ReplaySource) TeardownCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.teardown
}

func (s *ReplaySource) Err() error {
	return nil
}
