package accounts_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsift/pollwatch/internal/accounts"
)

func samplePoll() *accounts.Poll {
	var owner, winner accounts.Pubkey
	for i := range owner {
		owner[i] = byte(i)
		winner[i] = byte(255 - i)
	}
	return &accounts.Poll{
		PollID:         42,
		Owner:          owner,
		Name:           "Best programming language",
		Description:    "Vote for your favourite. Results are final.",
		Start:          1700000000,
		End:            1700086400,
		CandidateCount: 5,
		Winner:         winner,
	}
}

// body strips the discriminator from a full encoded account.
func body(t *testing.T, p *accounts.Poll) []byte {
	t.Helper()
	full := accounts.EncodePoll(p)
	require.GreaterOrEqual(t, len(full), accounts.DiscriminatorLen)
	return full[accounts.DiscriminatorLen:]
}

func TestDecodePoll_RoundTrip(t *testing.T) {
	want := samplePoll()

	got, err := accounts.DecodePoll(body(t, want))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDecodePoll_EmptyStrings(t *testing.T) {
	p := samplePoll()
	p.Name = ""
	p.Description = ""

	got, err := accounts.DecodePoll(body(t, p))
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestDecodePoll_AllTruncationsFail(t *testing.T) {
	full := body(t, samplePoll())

	for n := 0; n < len(full); n++ {
		_, err := accounts.DecodePoll(full[:n])
		assert.Error(t, err, "truncated to %d of %d bytes", n, len(full))
	}

	// The untruncated payload still decodes
	_, err := accounts.DecodePoll(full)
	assert.NoError(t, err)
}

func TestDecodePoll_NameTooLong(t *testing.T) {
	p := samplePoll()
	p.Name = string(bytes.Repeat([]byte("a"), accounts.MaxNameLen+1))

	_, err := accounts.DecodePoll(body(t, p))
	require.Error(t, err)
	assert.ErrorIs(t, err, accounts.ErrStringTooLong)
	assert.ErrorContains(t, err, "poll_name")
}

func TestDecodePoll_NameAtLimit(t *testing.T) {
	p := samplePoll()
	p.Name = string(bytes.Repeat([]byte("a"), accounts.MaxNameLen))

	got, err := accounts.DecodePoll(body(t, p))
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
}

func TestDecodePoll_DescriptionTooLong(t *testing.T) {
	p := samplePoll()
	p.Description = string(bytes.Repeat([]byte("b"), accounts.MaxDescriptionLen+1))

	_, err := accounts.DecodePoll(body(t, p))
	require.Error(t, err)
	assert.ErrorIs(t, err, accounts.ErrStringTooLong)
	assert.ErrorContains(t, err, "poll_description")
}

func TestDecodePoll_OversizedLengthPrefixWithBytesPresent(t *testing.T) {
	// A length prefix above the maximum fails even when enough bytes are
	// physically present in the buffer.
	buf := make([]byte, 0, 512)
	buf = binary.LittleEndian.AppendUint64(buf, 1) // poll_id
	buf = append(buf, make([]byte, 32)...)         // owner
	buf = binary.LittleEndian.AppendUint32(buf, accounts.MaxNameLen+1)
	buf = append(buf, bytes.Repeat([]byte("x"), 400)...)

	_, err := accounts.DecodePoll(buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, accounts.ErrStringTooLong)
}

func TestDecodePoll_HugeLengthPrefix(t *testing.T) {
	// A prefix at or above 2^31 must fail the limit check, not wrap
	// negative when narrowed to int.
	for _, prefix := range []uint32{1 << 31, 1<<32 - 1} {
		buf := make([]byte, 0, 64)
		buf = binary.LittleEndian.AppendUint64(buf, 1) // poll_id
		buf = append(buf, make([]byte, 32)...)         // owner
		buf = binary.LittleEndian.AppendUint32(buf, prefix)
		buf = append(buf, bytes.Repeat([]byte("x"), 8)...)

		_, err := accounts.DecodePoll(buf)
		require.Error(t, err, "prefix %d", prefix)
		assert.ErrorIs(t, err, accounts.ErrStringTooLong)
	}
}

func TestDecodePoll_InvalidUTF8(t *testing.T) {
	full := body(t, samplePoll())

	// poll_name bytes start after poll_id (8) + owner (32) + prefix (4)
	nameOffset := 8 + 32 + 4
	full[nameOffset] = 0xFF
	full[nameOffset+1] = 0xFE

	_, err := accounts.DecodePoll(full)
	require.Error(t, err)
	assert.ErrorIs(t, err, accounts.ErrInvalidUTF8)
	assert.ErrorContains(t, err, "poll_name")
}

func TestDecodePoll_Empty(t *testing.T) {
	_, err := accounts.DecodePoll(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, accounts.ErrShortBuffer)
}

func TestDecodePoll_KnownLayout(t *testing.T) {
	// Hand-built payload: poll_id=7, owner all zero, name "A",
	// description empty, start=1000, end=2000, 2 candidates,
	// winner all 0xFF.
	buf := make([]byte, 0, 128)
	buf = binary.LittleEndian.AppendUint64(buf, 7)
	buf = append(buf, make([]byte, 32)...)
	buf = binary.LittleEndian.AppendUint32(buf, 1)
	buf = append(buf, 'A')
	buf = binary.LittleEndian.AppendUint32(buf, 0)
	buf = binary.LittleEndian.AppendUint64(buf, 1000)
	buf = binary.LittleEndian.AppendUint64(buf, 2000)
	buf = binary.LittleEndian.AppendUint64(buf, 2)
	buf = append(buf, bytes.Repeat([]byte{0xFF}, 32)...)

	got, err := accounts.DecodePoll(buf)
	require.NoError(t, err)

	assert.Equal(t, uint64(7), got.PollID)
	assert.Equal(t, accounts.Pubkey{}, got.Owner)
	assert.Equal(t, "A", got.Name)
	assert.Equal(t, "", got.Description)
	assert.Equal(t, uint64(1000), got.Start)
	assert.Equal(t, uint64(2000), got.End)
	assert.Equal(t, uint64(2), got.CandidateCount)
	var wantWinner accounts.Pubkey
	for i := range wantWinner {
		wantWinner[i] = 0xFF
	}
	assert.Equal(t, wantWinner, got.Winner)
}

func TestEncodePoll_CarriesPollDiscriminator(t *testing.T) {
	full := accounts.EncodePoll(samplePoll())
	assert.Equal(t, accounts.KindPoll, accounts.Classify(full))
}

func TestPubkey_String(t *testing.T) {
	var p accounts.Pubkey
	p[0] = 0xAB
	s := p.String()
	assert.Len(t, s, 64)
	assert.Equal(t, "ab", s[:2])
}
