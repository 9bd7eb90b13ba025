package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jrazmi/todolist/core/auth"
	"github.com/jrazmi/todolist/core/repositories"
	"github.com/jrazmi/todolist/core/repositories/usersrepo"
)

const testKey = "0123456789abcdef0123456789abcdef"

type fakeUsers struct {
	byID map[uuid.UUID]usersrepo.User
}

func (f *fakeUsers) add(email, password string) usersrepo.User {
	hash, err := auth.HashPassword(password)
	if err != nil {
		panic(err)
	}
	u := usersrepo.User{UserID: uuid.New(), Email: email, PasswordHash: hash}
	f.byID[u.UserID] = u
	return u
}

func (f *fakeUsers) Get(_ context.Context, id uuid.UUID) (usersrepo.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return usersrepo.User{}, repositories.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (usersrepo.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return usersrepo.User{}, repositories.ErrNotFound
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newAuth(t *testing.T) (*auth.Auth, *fakeUsers, *clock) {
	t.Helper()

	users := &fakeUsers{byID: map[uuid.UUID]usersrepo.User{}}
	c := &clock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}

	a, err := auth.New(auth.Config{
		SigningKey:    testKey,
		TokenTTL:      time.Hour,
		RefreshWindow: 24 * time.Hour,
		Issuer:        "todolist",
	}, users, auth.WithClock(c.Now))
	if err != nil {
		t.Fatalf("new auth: %v", err)
	}
	return a, users, c
}

func TestIssueAndVerify(t *testing.T) {
	a, _, c := newAuth(t)
	userID := uuid.New()

	tok, err := a.Issue(userID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !tok.ExpiresAt.Equal(c.now.Add(time.Hour)) {
		t.Errorf("expires at %v", tok.ExpiresAt)
	}

	got, err := a.Verify(tok.Token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != userID {
		t.Errorf("subject = %v, want %v", got, userID)
	}
}

func TestVerifyDistinguishesExpiry(t *testing.T) {
	a, _, c := newAuth(t)

	tok, err := a.Issue(uuid.New())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	c.now = c.now.Add(2 * time.Hour)
	if _, err := a.Verify(tok.Token); !errors.Is(err, auth.ErrTokenExpired) {
		t.Errorf("expired: got %v, want ErrTokenExpired", err)
	}

	tampered := tok.Token[:len(tok.Token)-2] + "xx"
	if _, err := a.Verify(tampered); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("tampered: got %v, want ErrInvalidToken", err)
	}

	if _, err := a.Verify("not.a.token"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("garbage: got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRejectsOtherKeys(t *testing.T) {
	a, users, _ := newAuth(t)

	other, err := auth.New(auth.Config{
		SigningKey: strings.Repeat("z", 32),
		TokenTTL:   time.Hour,
		Issuer:     "todolist",
	}, users)
	if err != nil {
		t.Fatalf("new auth: %v", err)
	}

	tok, err := other.Issue(uuid.New())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := a.Verify(tok.Token); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("foreign key: got %v, want ErrInvalidToken", err)
	}
}

func TestRefreshAcceptsExpiredToken(t *testing.T) {
	ctx := context.Background()
	a, users, c := newAuth(t)
	user := users.add("a@example.com", "correct horse")

	old, err := a.Issue(user.UserID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	c.now = c.now.Add(3 * time.Hour)
	fresh, err := a.Refresh(ctx, old.Token)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	got, err := a.Verify(fresh.Token)
	if err != nil {
		t.Fatalf("verify refreshed: %v", err)
	}
	if got != user.UserID {
		t.Errorf("subject = %v", got)
	}
}

func TestRefreshRejects(t *testing.T) {
	ctx := context.Background()
	a, users, c := newAuth(t)
	user := users.add("a@example.com", "correct horse")

	old, err := a.Issue(user.UserID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	orphan, err := a.Issue(uuid.New())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := a.Refresh(ctx, orphan.Token); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("unknown user: got %v", err)
	}
	if _, err := a.Refresh(ctx, old.Token+"x"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("bad signature: got %v", err)
	}

	c.now = c.now.Add(48 * time.Hour)
	if _, err := a.Refresh(ctx, old.Token); !errors.Is(err, auth.ErrRefreshWindow) {
		t.Errorf("stale: got %v, want ErrRefreshWindow", err)
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	a, users, _ := newAuth(t)
	user := users.add("a@example.com", "correct horse")

	tok, err := a.Authenticate(ctx, "a@example.com", "correct horse")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got, _ := a.Verify(tok.Token); got != user.UserID {
		t.Errorf("subject = %v", got)
	}

	if _, err := a.Authenticate(ctx, "a@example.com", "wrong horse"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v", err)
	}
	if _, err := a.Authenticate(ctx, "b@example.com", "correct horse"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("unknown email: got %v", err)
	}
}

func TestNewRejectsShortKey(t *testing.T) {
	if _, err := auth.New(auth.Config{SigningKey: "short", TokenTTL: time.Hour}, nil); err == nil {
		t.Error("expected error for short key")
	}
}

func TestHashPasswordRejectsShort(t *testing.T) {
	if _, err := auth.HashPassword("short"); !errors.Is(err, auth.ErrWeakPassword) {
		t.Errorf("got %v, want ErrWeakPassword", err)
	}
}
