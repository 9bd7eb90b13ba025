package postgresdb_test

import (
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/jrazmi/todolist/infrastructure/postgresdb"
)

func TestKeysetApply(t *testing.T) {
	from := "0190b2c4"

	tests := []struct {
		name     string
		keyset   postgresdb.Keyset[string]
		wantSQL  string
		wantArgs pgx.NamedArgs
	}{
		{
			name:     "first page descending",
			keyset:   postgresdb.Keyset[string]{PKField: "task_id", Direction: "desc", Limit: 11},
			wantSQL:  `WHERE owner_id = @owner_id ORDER BY "task_id" DESC LIMIT @limit`,
			wantArgs: pgx.NamedArgs{"limit": 11},
		},
		{
			name:     "later page descending is inclusive",
			keyset:   postgresdb.Keyset[string]{PKField: "task_id", Direction: postgresdb.DESC, From: &from, Limit: 11},
			wantSQL:  `WHERE owner_id = @owner_id AND "task_id" <= @cursor_pk ORDER BY "task_id" DESC LIMIT @limit`,
			wantArgs: pgx.NamedArgs{"limit": 11, "cursor_pk": from},
		},
		{
			name:     "ascending",
			keyset:   postgresdb.Keyset[string]{PKField: "tasks.task_id", Direction: postgresdb.ASC, From: &from},
			wantSQL:  `WHERE owner_id = @owner_id AND "tasks"."task_id" >= @cursor_pk ORDER BY "tasks"."task_id" ASC`,
			wantArgs: pgx.NamedArgs{"cursor_pk": from},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf strings.Builder
			buf.WriteString("WHERE owner_id = @owner_id")
			args := pgx.NamedArgs{}

			if err := tt.keyset.Apply(&buf, args); err != nil {
				t.Fatalf("apply: %v", err)
			}
			if buf.String() != tt.wantSQL {
				t.Errorf("sql:\n got %s\nwant %s", buf.String(), tt.wantSQL)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("args = %v, want %v", args, tt.wantArgs)
			}
			for k, v := range tt.wantArgs {
				if args[k] != v {
					t.Errorf("args[%s] = %v, want %v", k, args[k], v)
				}
			}
		})
	}
}

func TestKeysetApplyRejectsBadInput(t *testing.T) {
	bad := []postgresdb.Keyset[string]{
		{PKField: "task_id; DROP TABLE tasks", Direction: postgresdb.DESC},
		{PKField: "a.b.c", Direction: postgresdb.DESC},
		{PKField: "task_id", Direction: "sideways"},
	}
	for _, k := range bad {
		var buf strings.Builder
		if err := k.Apply(&buf, pgx.NamedArgs{}); err == nil {
			t.Errorf("expected error for %+v", k)
		}
	}
}

func TestQuoteIdentifier(t *testing.T) {
	got, err := postgresdb.QuoteIdentifier("tasks.owner_id")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if got != `"tasks"."owner_id"` {
		t.Errorf("got %s", got)
	}
	if _, err := postgresdb.QuoteIdentifier(`owner"id`); err == nil {
		t.Error("expected error for quote character")
	}
}
