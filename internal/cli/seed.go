package cli

import (
	crand "crypto/rand"
	"fmt"
	"math/rand/v2"
	"time"
	"unicode/utf8"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/chainsift/pollwatch/internal/accounts"
	"github.com/chainsift/pollwatch/internal/cli/output"
	"github.com/chainsift/pollwatch/internal/source"
)

var (
	seedCount    int
	seedInterval time.Duration
	seedPolls    int
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Publish synthetic account updates",
	Long: `Publish synthetic voting-program account updates to the update
subject. Poll payloads carry generated names and descriptions; a share of
updates use the candidate and vote discriminators to exercise the classifier.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		gofakeit.Seed(time.Now().UnixNano())

		conn, err := nats.Connect(cfg.NATS.URL, nats.Name(cfg.NATS.Name+"-seeder"))
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer conn.Close()

		subject := source.Subject(cfg.NATS.SubjectPrefix, cfg.Program.ID)
		output.Info("Publishing %d updates to %s", seedCount, subject)

		for i := 0; i < seedCount; i++ {
			payload := nextPayload(i)

			var pubkey accounts.Pubkey
			crand.Read(pubkey[:])

			env, err := source.MarshalUpdate(pubkey.String(), uint64(1000+i), payload)
			if err != nil {
				return fmt.Errorf("failed to build envelope: %w", err)
			}
			if err := conn.Publish(subject, env); err != nil {
				return fmt.Errorf("failed to publish update: %w", err)
			}

			if seedInterval > 0 && i < seedCount-1 {
				time.Sleep(seedInterval)
			}
		}

		if err := conn.Flush(); err != nil {
			return fmt.Errorf("failed to flush: %w", err)
		}

		output.Success("Published %d updates", seedCount)
		return nil
	},
}

// nextPayload produces a poll account most of the time, with occasional
// candidate and vote tags mixed in.
func nextPayload(i int) []byte {
	if i%5 == 4 {
		var tag [accounts.DiscriminatorLen]byte
		if i%2 == 0 {
			tag = accounts.CandidateDiscriminator()
		} else {
			tag = accounts.VoteDiscriminator()
		}
		body := make([]byte, 64)
		crand.Read(body)
		return append(tag[:], body...)
	}

	var owner, winner accounts.Pubkey
	crand.Read(owner[:])
	crand.Read(winner[:])

	start := uint64(time.Now().Unix())
	poll := &accounts.Poll{
		PollID:         uint64(rand.IntN(seedPolls) + 1),
		Owner:          owner,
		Name:           truncate(gofakeit.Question(), accounts.MaxNameLen),
		Description:    truncate(gofakeit.Sentence(12), accounts.MaxDescriptionLen),
		Start:          start,
		End:            start + uint64(rand.IntN(86400)),
		CandidateCount: uint64(rand.IntN(8) + 2),
		Winner:         winner,
	}
	return accounts.EncodePoll(poll)
}

// truncate trims s to at most max bytes without splitting a UTF-8 sequence.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	s = s[:max]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}

func init() {
	seedCmd.Flags().IntVar(&seedCount, "count", 50, "number of updates to publish")
	seedCmd.Flags().DurationVar(&seedInterval, "interval", 50*time.Millisecond, "interval between updates")
	seedCmd.Flags().IntVar(&seedPolls, "polls", 10, "distinct poll ids to spread updates across")
	rootCmd.AddCommand(seedCmd)
}
