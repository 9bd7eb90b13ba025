// Package session stores the signed-in user's bearer token.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/99designs/keyring"
)

// Token is a bearer credential and its expiry.
type Token struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether t is past its expiry at now.
func (t Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && !now.Before(t.ExpiresAt)
}

// Store persists the current token. Load reports ok=false when no token is
// stored.
type Store interface {
	Load() (tok Token, ok bool, err error)
	Save(tok Token) error
	Clear() error
}

// Memory keeps the token for the life of the process.
type Memory struct {
	mu  sync.Mutex
	tok *Token
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load() (Token, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tok == nil {
		return Token{}, false, nil
	}
	return *m.tok, true, nil
}

func (m *Memory) Save(tok Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tok = &tok
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tok = nil
	return nil
}

const serviceName = "todolist"

// Keyring keeps the token in the operating system's credential store.
type Keyring struct {
	ring keyring.Keyring
	key  string
}

// OpenKeyring opens the system keyring, falling back to an encrypted file
// under fileDir.
func OpenKeyring(fileDir, key string) (*Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt("todolist-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewKeyring(ring, key), nil
}

// NewKeyring stores the token under key in ring.
func NewKeyring(ring keyring.Keyring, key string) *Keyring {
	return &Keyring{ring: ring, key: key}
}

func (k *Keyring) Load() (Token, bool, error) {
	item, err := k.ring.Get(k.key)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return Token{}, false, nil
		}
		return Token{}, false, fmt.Errorf("getting token %q: %w", k.key, err)
	}

	var tok Token
	if err := json.Unmarshal(item.Data, &tok); err != nil {
		return Token{}, false, fmt.Errorf("decoding token %q: %w", k.key, err)
	}
	return tok, true, nil
}

func (k *Keyring) Save(tok Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	err = k.ring.Set(keyring.Item{
		Key:   k.key,
		Data:  data,
		Label: "todolist session",
	})
	if err != nil {
		return fmt.Errorf("setting token %q: %w", k.key, err)
	}
	return nil
}

func (k *Keyring) Clear() error {
	if err := k.ring.Remove(k.key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting token %q: %w", k.key, err)
	}
	return nil
}
