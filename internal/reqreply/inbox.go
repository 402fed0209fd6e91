// Package reqreply generates the private inbox subjects used as the
// replyTo of a request, per spec.md §4.4 and §6. Subject generation
// lives in its own tiny package so it can carry an adversarial,
// property-based uniqueness test independent of the request/reply
// bookkeeping built on top of it in the relay package.
package reqreply

import (
	"math/big"

	"github.com/google/uuid"
)

// InboxPrefix is the fixed literal prefix of every generated inbox
// subject.
const InboxPrefix = "_INBOX."

// NewInbox returns a fresh, unique inbox subject: the literal prefix
// "_INBOX." followed by the 128-bit value of a version-4 UUID rendered
// as a positive base-16 string. uuid.New draws its randomness from
// crypto/rand; 122 of the 128 bits are random, the other six are the
// UUID's fixed version and variant bits. Rendering through math/big.Int.Text(16) (rather than a fixed-width
// hex.EncodeToString) matches spec.md's "no fixed width; leading zeros
// may be absent" wording exactly.
func NewInbox() string {
	u := uuid.New()
	n := new(big.Int).SetBytes(u[:])
	return InboxPrefix + n.Text(16)
}
