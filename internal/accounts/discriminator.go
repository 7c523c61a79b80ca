// Package accounts classifies and decodes the on-chain account layouts of the
// voting program. Every account owned by the program starts with an 8-byte
// discriminator taken from the program IDL; the remainder of the payload is a
// little-endian field sequence specific to the account kind.
package accounts

// DiscriminatorLen is the number of bytes used to tag an account's kind.
const DiscriminatorLen = 8

// Kind identifies which account layout a raw payload carries.
type Kind int

const (
	KindUnknown Kind = iota
	KindPoll
	KindCandidate
	KindVote
)

// Discriminator constants from the voting program IDL.
var (
	pollDiscriminator      = [DiscriminatorLen]byte{110, 234, 167, 188, 231, 136, 153, 111}
	candidateDiscriminator = [DiscriminatorLen]byte{86, 69, 250, 96, 193, 10, 222, 123}
	voteDiscriminator      = [DiscriminatorLen]byte{241, 93, 35, 191, 254, 147, 17, 202}
)

// Classify maps the first 8 bytes of raw account data to a Kind.
// Payloads shorter than 8 bytes, and tags that match no registered
// discriminator, classify as KindUnknown. Only the first 8 bytes are
// inspected; the rest of the payload is never read.
func Classify(data []byte) Kind {
	if len(data) < DiscriminatorLen {
		return KindUnknown
	}

	var tag [DiscriminatorLen]byte
	copy(tag[:], data[:DiscriminatorLen])

	switch tag {
	case pollDiscriminator:
		return KindPoll
	case candidateDiscriminator:
		return KindCandidate
	case voteDiscriminator:
		return KindVote
	default:
		return KindUnknown
	}
}

// String returns a log-friendly name for the kind.
func (k Kind) String() string {
	switch k {
	case KindPoll:
		return "poll"
	case KindCandidate:
		return "candidate"
	case KindVote:
		return "vote"
	default:
		return "unknown"
	}
}
