package accounts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chainsift/pollwatch/internal/accounts"
)

func pollTag() []byte {
	return []byte{110, 234, 167, 188, 231, 136, 153, 111}
}

func candidateTag() []byte {
	return []byte{86, 69, 250, 96, 193, 10, 222, 123}
}

func voteTag() []byte {
	return []byte{241, 93, 35, 191, 254, 147, 17, 202}
}

func TestClassify_ShortBuffers(t *testing.T) {
	for n := 0; n < accounts.DiscriminatorLen; n++ {
		buf := pollTag()[:n]
		assert.Equal(t, accounts.KindUnknown, accounts.Classify(buf), "length %d", n)
	}
}

func TestClassify_KnownDiscriminators(t *testing.T) {
	tests := []struct {
		name string
		tag  []byte
		want accounts.Kind
	}{
		{"poll", pollTag(), accounts.KindPoll},
		{"candidate", candidateTag(), accounts.KindCandidate},
		{"vote", voteTag(), accounts.KindVote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, accounts.Classify(tt.tag))

			// Trailing bytes never affect classification
			withBody := append(append([]byte{}, tt.tag...), 0xDE, 0xAD, 0xBE, 0xEF)
			assert.Equal(t, tt.want, accounts.Classify(withBody))
		})
	}
}

func TestClassify_DiscriminatorsPairwiseDistinct(t *testing.T) {
	kinds := map[accounts.Kind]bool{
		accounts.Classify(pollTag()):      true,
		accounts.Classify(candidateTag()): true,
		accounts.Classify(voteTag()):      true,
	}
	assert.Len(t, kinds, 3)
}

func TestClassify_UnknownTag(t *testing.T) {
	buf := make([]byte, 16)
	assert.Equal(t, accounts.KindUnknown, accounts.Classify(buf))

	// One byte off a known tag is unknown
	tag := pollTag()
	tag[7]++
	assert.Equal(t, accounts.KindUnknown, accounts.Classify(tag))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "poll", accounts.KindPoll.String())
	assert.Equal(t, "candidate", accounts.KindCandidate.String())
	assert.Equal(t, "vote", accounts.KindVote.String())
	assert.Equal(t, "unknown", accounts.KindUnknown.String())
}
