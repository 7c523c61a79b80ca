package accounts

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"unicode/utf8"
)

// Field size limits from the program IDL.
const (
	MaxNameLen        = 64
	MaxDescriptionLen = 280
)

var (
	// ErrShortBuffer indicates the payload ended before a field's full range.
	ErrShortBuffer = errors.New("account data too short")
	// ErrStringTooLong indicates a string length prefix exceeds the field's maximum.
	ErrStringTooLong = errors.New("string exceeds maximum length")
	// ErrInvalidUTF8 indicates string bytes are not valid UTF-8.
	ErrInvalidUTF8 = errors.New("string is not valid UTF-8")
)

// Pubkey is a 32-byte on-chain address. It is treated as opaque binary; the
// indexer never derives or verifies keys.
type Pubkey [32]byte

// String renders the key as lowercase hex.
func (p Pubkey) String() string {
	return hex.EncodeToString(p[:])
}

// Poll is the decoded form of a poll account. Immutable once decoded;
// PollID is the upsert key in storage.
type Poll struct {
	PollID         uint64
	Owner          Pubkey
	Name           string
	Description    string
	Start          uint64
	End            uint64
	CandidateCount uint64
	Winner         Pubkey
}

// DecodePoll reconstructs a Poll from the account body, i.e. the payload
// after the caller has stripped the 8-byte discriminator. The layout is a
// fixed little-endian field sequence:
//
//	u64 poll_id | [32]owner | string name (max 64) | string description
//	(max 280) | u64 start | u64 end | u64 candidate_count | [32]winner
//
// where string is a u32 little-endian byte length followed by that many
// UTF-8 bytes. Decoding is all-or-nothing: any bounds violation, length
// limit violation, or invalid UTF-8 fails the whole decode with no partial
// result.
func DecodePoll(body []byte) (*Poll, error) {
	d := decoder{buf: body}

	p := &Poll{}
	var err error

	if p.PollID, err = d.u64(); err != nil {
		return nil, fmt.Errorf("poll_id: %w", err)
	}
	if p.Owner, err = d.pubkey(); err != nil {
		return nil, fmt.Errorf("poll_owner: %w", err)
	}
	if p.Name, err = d.str(MaxNameLen); err != nil {
		return nil, fmt.Errorf("poll_name: %w", err)
	}
	if p.Description, err = d.str(MaxDescriptionLen); err != nil {
		return nil, fmt.Errorf("poll_description: %w", err)
	}
	if p.Start, err = d.u64(); err != nil {
		return nil, fmt.Errorf("poll_start: %w", err)
	}
	if p.End, err = d.u64(); err != nil {
		return nil, fmt.Errorf("poll_end: %w", err)
	}
	if p.CandidateCount, err = d.u64(); err != nil {
		return nil, fmt.Errorf("candidate_amount: %w", err)
	}
	if p.Winner, err = d.pubkey(); err != nil {
		return nil, fmt.Errorf("candidate_winner: %w", err)
	}

	return p, nil
}

// decoder is a sequential cursor over an account body. Every read checks
// bounds before advancing.
type decoder struct {
	buf []byte
	off int
}

func (d *decoder) remaining() int {
	return len(d.buf) - d.off
}

func (d *decoder) u64() (uint64, error) {
	if d.remaining() < 8 {
		return 0, ErrShortBuffer
	}
	v := binary.LittleEndian.Uint64(d.buf[d.off : d.off+8])
	d.off += 8
	return v, nil
}

func (d *decoder) pubkey() (Pubkey, error) {
	var p Pubkey
	if d.remaining() < len(p) {
		return p, ErrShortBuffer
	}
	copy(p[:], d.buf[d.off:d.off+len(p)])
	d.off += len(p)
	return p, nil
}

// str reads a u32 little-endian length prefix and that many UTF-8 bytes.
func (d *decoder) str(maxLen int) (string, error) {
	if d.remaining() < 4 {
		return "", ErrShortBuffer
	}
	// Compare before converting: a prefix >= 2^31 must not wrap negative
	// on 32-bit targets.
	prefix := binary.LittleEndian.Uint32(d.buf[d.off : d.off+4])
	if uint64(prefix) > uint64(maxLen) {
		return "", fmt.Errorf("%w: %d > %d", ErrStringTooLong, prefix, maxLen)
	}
	n := int(prefix)
	if d.remaining() < 4+n {
		return "", ErrShortBuffer
	}
	raw := d.buf[d.off+4 : d.off+4+n]
	if !utf8.Valid(raw) {
		return "", ErrInvalidUTF8
	}
	d.off += 4 + n
	return string(raw), nil
}

// EncodePoll serializes a Poll back into full account data, discriminator
// included. The seeder uses this to publish synthetic updates; tests use it
// to build fixtures that round-trip through DecodePoll.
func EncodePoll(p *Poll) []byte {
	buf := make([]byte, 0, DiscriminatorLen+8+32+4+len(p.Name)+4+len(p.Description)+8+8+8+32)
	buf = append(buf, pollDiscriminator[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, p.PollID)
	buf = append(buf, p.Owner[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(p.Name)))
	buf = append(buf, p.Name...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(p.Description)))
	buf = append(buf, p.Description...)
	buf = binary.LittleEndian.AppendUint64(buf, p.Start)
	buf = binary.LittleEndian.AppendUint64(buf, p.End)
	buf = binary.LittleEndian.AppendUint64(buf, p.CandidateCount)
	buf = append(buf, p.Winner[:]...)
	return buf
}

// VoteDiscriminator returns the registered tag for vote accounts. Exposed for
// the seeder, which publishes non-poll updates to exercise classification.
func VoteDiscriminator() [DiscriminatorLen]byte {
	return voteDiscriminator
}

// CandidateDiscriminator returns the registered tag for candidate accounts.
func CandidateDiscriminator() [DiscriminatorLen]byte {
	return candidateDiscriminator
}
