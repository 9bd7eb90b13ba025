// Package ids generates record identifiers and converts them to and from
// their external form.
//
// Identifiers are UUIDv7 values, so their byte order is creation order. The
// external form is lower-case base32hex without padding: URL-safe, fixed
// length, and it sorts lexicographically in the same order as the bytes.
package ids

import (
	"encoding/base32"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// EncodedLen is the length of every encoded identifier.
const EncodedLen = 26

// ErrInvalid is returned when a string is not a canonical encoded identifier.
var ErrInvalid = errors.New("invalid identifier")

var encoding = base32.NewEncoding("0123456789abcdefghijklmnopqrstuv").WithPadding(base32.NoPadding)

// New returns a fresh time-ordered identifier.
func New() (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generate id: %w", err)
	}
	return id, nil
}

// Encode returns the external form of id.
func Encode(id uuid.UUID) string {
	return encoding.EncodeToString(id[:])
}

// Decode parses the external form produced by Encode. Only the canonical
// spelling is accepted, so Decode(s) succeeding implies Encode(result) == s.
func Decode(s string) (uuid.UUID, error) {
	if len(s) != EncodedLen {
		return uuid.Nil, fmt.Errorf("%w: length %d", ErrInvalid, len(s))
	}
	b, err := encoding.DecodeString(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	id, err := uuid.FromBytes(b)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if Encode(id) != s {
		return uuid.Nil, fmt.Errorf("%w: non-canonical encoding", ErrInvalid)
	}
	return id, nil
}
