package session_test

import (
	"testing"
	"time"

	"github.com/99designs/keyring"

	"github.com/jrazmi/todolist/client/session"
)

func exercise(t *testing.T, store session.Store) {
	t.Helper()

	if _, ok, err := store.Load(); ok || err != nil {
		t.Fatalf("empty load = %v, %v", ok, err)
	}

	want := session.Token{Value: "abc", ExpiresAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	if err := store.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := store.Load()
	if err != nil || !ok {
		t.Fatalf("load = %v, %v", ok, err)
	}
	if got.Value != want.Value || !got.ExpiresAt.Equal(want.ExpiresAt) {
		t.Errorf("load = %+v, want %+v", got, want)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := store.Load(); ok {
		t.Error("token survived clear")
	}
	if err := store.Clear(); err != nil {
		t.Errorf("clearing an empty store: %v", err)
	}
}

func TestMemory(t *testing.T) {
	exercise(t, session.NewMemory())
}

func TestKeyring(t *testing.T) {
	exercise(t, session.NewKeyring(keyring.NewArrayKeyring(nil), "token"))
}

func TestExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		tok  session.Token
		want bool
	}{
		{"no expiry", session.Token{Value: "x"}, false},
		{"future", session.Token{ExpiresAt: now.Add(time.Minute)}, false},
		{"exactly now", session.Token{ExpiresAt: now}, true},
		{"past", session.Token{ExpiresAt: now.Add(-time.Minute)}, true},
	}
	for _, tt := range tests {
		if got := tt.tok.Expired(now); got != tt.want {
			t.Errorf("%s: Expired = %v, want %v", tt.name, got, tt.want)
		}
	}
}
