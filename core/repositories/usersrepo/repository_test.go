package usersrepo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/jrazmi/todolist/core/repositories"
	"github.com/jrazmi/todolist/core/repositories/usersrepo"
	"github.com/jrazmi/todolist/core/repositories/usersrepo/stores/userssqlitestore"
	"github.com/jrazmi/todolist/infrastructure/sqlitedb"
	"github.com/jrazmi/todolist/schema"
	"github.com/jrazmi/todolist/sdk/logger"
)

func newRepository(t *testing.T) *usersrepo.Repository {
	t.Helper()

	log := logger.NewDiscard()
	db, err := sqlitedb.Open(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := sqlitedb.Migrate(context.Background(), log.Logger, db, schema.MigrationsFS, schema.SQLiteDir); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return usersrepo.NewRepository(log, userssqlitestore.NewStore(log, db))
}

func TestCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := newRepository(t)

	created, err := repo.Create(ctx, usersrepo.CreateUser{Email: "  Ada@Example.com ", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Email != "ada@example.com" {
		t.Errorf("email = %q, want normalized", created.Email)
	}

	byEmail, err := repo.GetByEmail(ctx, "ADA@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if byEmail.UserID != created.UserID || byEmail.PasswordHash != "hash" {
		t.Errorf("get by email = %+v", byEmail)
	}

	byID, err := repo.Get(ctx, created.UserID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if byID.Email != created.Email {
		t.Errorf("get = %+v", byID)
	}
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := newRepository(t)

	if _, err := repo.Create(ctx, usersrepo.CreateUser{Email: "a@example.com", PasswordHash: "x"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := repo.Create(ctx, usersrepo.CreateUser{Email: "A@example.com", PasswordHash: "y"})
	if !errors.Is(err, repositories.ErrAlreadyExists) {
		t.Errorf("duplicate: got %v, want ErrAlreadyExists", err)
	}
}

func TestLookupMisses(t *testing.T) {
	ctx := context.Background()
	repo := newRepository(t)

	if _, err := repo.Get(ctx, uuid.New()); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("get: %v", err)
	}
	if _, err := repo.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("get by email: %v", err)
	}
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "a@b.co", want: "a@b.co"},
		{in: " A@B.CO", want: "a@b.co"},
		{in: "", wantErr: true},
		{in: "no-at-sign", wantErr: true},
		{in: "Ada <ada@example.com>", wantErr: true},
	}

	for _, tt := range tests {
		got, err := usersrepo.NormalizeEmail(tt.in)
		if tt.wantErr {
			if !errors.Is(err, usersrepo.ErrInvalidEmail) {
				t.Errorf("NormalizeEmail(%q) error = %v, want ErrInvalidEmail", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("NormalizeEmail(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}
