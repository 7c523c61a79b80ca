package source

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsift/pollwatch/internal/logging"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "accounts.prog123", Subject("accounts", "prog123"))
}

func TestMarshalUpdate_RoundTrip(t *testing.T) {
	raw := []byte{1, 2, 3, 4, 5}

	data, err := MarshalUpdate("pubkey1", 99, raw)
	require.NoError(t, err)

	u, err := decodeEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, "pubkey1", u.Pubkey)
	assert.Equal(t, uint64(99), u.Slot)
	assert.Equal(t, raw, u.Data)
	assert.NotEmpty(t, u.ID)
}

func TestDecodeEnvelope_MalformedJSON(t *testing.T) {
	_, err := decodeEnvelope([]byte("{not json"))
	assert.Error(t, err)
}

func TestDecodeEnvelope_RejectsNonBinaryEncoding(t *testing.T) {
	data, err := json.Marshal(envelope{
		Pubkey:   "p",
		Data:     base64.StdEncoding.EncodeToString([]byte("x")),
		Encoding: "jsonParsed",
	})
	require.NoError(t, err)

	_, err = decodeEnvelope(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encoding")
}

func TestDecodeEnvelope_MissingEncodingDefaultsToBase64(t *testing.T) {
	data, err := json.Marshal(envelope{
		Pubkey: "p",
		Slot:   7,
		Data:   base64.StdEncoding.EncodeToString([]byte("abc")),
	})
	require.NoError(t, err)

	u, err := decodeEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), u.Data)
}

func TestDecodeEnvelope_BadBase64(t *testing.T) {
	data, err := json.Marshal(envelope{Pubkey: "p", Data: "!!not-base64!!"})
	require.NoError(t, err)

	_, err = decodeEnvelope(data)
	assert.Error(t, err)
}

func TestSubscribe_RejectsUnsupportedEncoding(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProgramID = "prog"
	cfg.Encoding = "base58"

	_, err := Subscribe(cfg, logging.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encoding")
}

func TestSubscribe_RequiresProgramID(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProgramID = ""

	_, err := Subscribe(cfg, logging.Default())
	assert.Error(t, err)
}

func TestReplaySource_UnsubscribeIsIdempotent(t *testing.T) {
	src := NewReplaySource(1)

	require.NoError(t, src.Unsubscribe())
	require.NoError(t, src.Unsubscribe())
	assert.Equal(t, 2, src.TeardownCalls())

	_, open := <-src.Updates()
	assert.False(t, open)
}
