package fop

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidCursor is returned for page tokens that cannot be decoded.
var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor is the self-contained position a page token carries: the key of the
// first record of the next page.
type Cursor[PK any] struct {
	PK PK `json:"pk"`
}

// Encode serializes the cursor as URL-safe base64 of its JSON form.
func (c Cursor[PK]) Encode() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeCursor reverses Encode. An empty token decodes to nil with no error,
// meaning "start from the beginning".
func DecodeCursor[PK any](token string) (*Cursor[PK], error) {
	if token == "" {
		return nil, nil
	}

	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	var cursor Cursor[PK]
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	return &cursor, nil
}
