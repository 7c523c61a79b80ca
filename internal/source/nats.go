package source

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/chainsift/pollwatch/internal/logging"
)

// EncodingBase64 is the only account-data encoding the indexer accepts. The
// decoder works on raw bytes; a relay publishing a textual encoding would be
// silently misdecoded, so anything else is rejected at subscribe time.
const EncodingBase64 = "base64"

// Config holds the NATS subscription settings for one program.
type Config struct {
	// URL is the NATS server URL (e.g., "nats://localhost:4222").
	URL string

	// Name is the client name for connection identification.
	Name string

	// SubjectPrefix prefixes the per-program subject, e.g. "accounts".
	SubjectPrefix string

	// ProgramID is the owner program whose account updates are delivered.
	ProgramID string

	// Encoding is the account-data encoding the relay publishes.
	// Must be "base64".
	Encoding string

	// MaxReconnects is the maximum number of reconnection attempts.
	// Use -1 for infinite reconnects.
	MaxReconnects int

	// ReconnectWait is the time to wait between reconnection attempts.
	ReconnectWait time.Duration

	// Timeout is the connection timeout.
	Timeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults. ProgramID must
// still be set by the caller.
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		Name:          "pollwatch",
		SubjectPrefix: "accounts",
		Encoding:      EncodingBase64,
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		Timeout:       5 * time.Second,
	}
}

// Subject returns the NATS subject carrying account updates for a program.
func Subject(prefix, programID string) string {
	return prefix + "." + programID
}

// envelope is the relay's wire format for one account notification.
type envelope struct {
	Pubkey   string `json:"pubkey"`
	Slot     uint64 `json:"slot"`
	Data     string `json:"data"`
	Encoding string `json:"encoding,omitempty"`
}

// MarshalUpdate serializes an account update into the relay envelope. The
// seeder publishes with this; tests use it to build wire fixtures.
func MarshalUpdate(pubkey string, slot uint64, raw []byte) ([]byte, error) {
	return json.Marshal(envelope{
		Pubkey:   pubkey,
		Slot:     slot,
		Data:     base64.StdEncoding.EncodeToString(raw),
		Encoding: EncodingBase64,
	})
}

// NATSSource implements Source over a NATS subscription. Message order on
// one subject is preserved by the client, which matches the ordered-sequence
// contract the consumer relies on.
type NATSSource struct {
	conn *nats.Conn
	sub  *nats.Subscription
	log  *logging.Logger

	out  chan Update
	done chan struct{}

	once     sync.Once
	doneOnce sync.Once
	mu       sync.Mutex
	err      error
}

// Subscribe connects to NATS and subscribes to the program's account
// subject. Connection or subscription failure is fatal and returned to the
// caller; nothing is consumed.
func Subscribe(cfg Config, log *logging.Logger) (*NATSSource, error) {
	if cfg.Encoding != EncodingBase64 {
		return nil, fmt.Errorf("unsupported account encoding %q: the decoder requires %s", cfg.Encoding, EncodingBase64)
	}
	if cfg.ProgramID == "" {
		return nil, fmt.Errorf("program id is required")
	}

	s := &NATSSource{
		log:  log,
		out:  make(chan Update),
		done: make(chan struct{}),
	}

	opts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info("nats reconnected")
		}),
		nats.ClosedHandler(func(c *nats.Conn) {
			s.setErr(c.LastError())
			s.signalDone()
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	subject := Subject(cfg.SubjectPrefix, cfg.ProgramID)
	msgs := make(chan *nats.Msg, 64)
	sub, err := conn.ChanSubscribe(subject, msgs)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	s.conn = conn
	s.sub = sub

	log.Info("subscribed to program account updates", "subject", subject)
	go s.forward(msgs)

	return s, nil
}

// forward turns raw NATS messages into Updates until torn down. Malformed
// envelopes never reach the consumer; they are logged and skipped here.
func (s *NATSSource) forward(msgs <-chan *nats.Msg) {
	defer close(s.out)

	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			u, err := decodeEnvelope(msg.Data)
			if err != nil {
				s.log.Warn("dropping malformed account notification", "subject", msg.Subject, "error", err)
				continue
			}
			select {
			case s.out <- u:
			case <-s.done:
				return
			}
		}
	}
}

func decodeEnvelope(data []byte) (Update, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Update{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Encoding != "" && env.Encoding != EncodingBase64 {
		return Update{}, fmt.Errorf("unexpected account encoding %q", env.Encoding)
	}

	raw, err := base64.StdEncoding.DecodeString(env.Data)
	if err != nil {
		return Update{}, fmt.Errorf("decode account data: %w", err)
	}

	return Update{
		ID:     uuid.NewString(),
		Pubkey: env.Pubkey,
		Slot:   env.Slot,
		Data:   raw,
	}, nil
}

// Updates returns the ordered update sequence.
func (s *NATSSource) Updates() <-chan Update {
	return s.out
}

// Unsubscribe tears down the subscription and the connection. Idempotent;
// safe to call after the connection already closed.
func (s *NATSSource) Unsubscribe() error {
	var err error
	s.once.Do(func() {
		if s.sub.IsValid() {
			err = s.sub.Unsubscribe()
		}
		s.signalDone()
		if !s.conn.IsClosed() {
			s.conn.Close()
		}
	})
	return err
}

// Err reports the terminal connection error, if any.
func (s *NATSSource) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *NATSSource) setErr(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *NATSSource) signalDone() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}
