package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jrazmi/todolist/app/todo/api"
	"github.com/jrazmi/todolist/app/todo/config"
	"github.com/jrazmi/todolist/bridge/scaffolding/mid"
	"github.com/jrazmi/todolist/core/auth"
	"github.com/jrazmi/todolist/infrastructure/web"
	"github.com/jrazmi/todolist/sdk/logger"
	"github.com/jrazmi/todolist/sdk/telemetry"
)

func newHandler(t *testing.T) http.Handler {
	t.Helper()

	t.Setenv("APITEST_DB_DRIVER", config.DriverSQLite)
	t.Setenv("APITEST_SQLITE_PATH", ":memory:")
	t.Setenv("APITEST_AUTH_SIGNING_KEY", strings.Repeat("s", 32))

	log := logger.NewDiscard()
	db, err := config.OpenDatastore("APITEST", log)
	if err != nil {
		t.Fatalf("open datastore: %v", err)
	}
	t.Cleanup(db.Close)

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repositories := db.Repositories(log)
	a, err := auth.NewFromEnv("APITEST", repositories.Users)
	if err != nil {
		t.Fatalf("auth: %v", err)
	}

	tel := telemetry.NewTelemetry()
	wh := web.NewWebHandler(web.HandlerOptions{CORSOrigins: []string{"*"}},
		web.WithTelemetry(tel),
		web.WithGlobalMiddleware(mid.Logger(log, tel), mid.Errors(log), mid.Panics()),
	)
	api.AddHandlers(wh, config.Todo{
		Build:        "test",
		Logger:       log,
		Repositories: repositories,
		StatusCheck:  db.StatusCheck,
	}, a)

	return wh
}

func call(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	h := newHandler(t)

	rec := call(t, h, http.MethodGet, "/api/v1/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}

	var got struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Build   string `json:"build"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Code != "ok" || got.Message != "database reachable" || got.Build != "test" {
		t.Errorf("healthz = %+v", got)
	}
}

func TestSignUpSignInAndUseTasks(t *testing.T) {
	h := newHandler(t)
	creds := `{"email":"a@example.com","password":"correct horse"}`

	if rec := call(t, h, http.MethodPost, "/api/v1/users", "", creds); rec.Code != http.StatusCreated {
		t.Fatalf("sign up: %d %s", rec.Code, rec.Body)
	}

	rec := call(t, h, http.MethodPost, "/api/v1/auth/token", "", creds)
	if rec.Code != http.StatusOK {
		t.Fatalf("token: %d %s", rec.Code, rec.Body)
	}
	var tok struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &tok); err != nil || tok.Token == "" {
		t.Fatalf("token body %s: %v", rec.Body, err)
	}

	if rec := call(t, h, http.MethodPost, "/api/v1/tasks", tok.Token, `{"text":"ship it"}`); rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body)
	}

	rec = call(t, h, http.MethodGet, "/api/v1/tasks", tok.Token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d %s", rec.Code, rec.Body)
	}
	var tasks []struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &tasks); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Text != "ship it" {
		t.Errorf("tasks = %+v", tasks)
	}

	if rec := call(t, h, http.MethodGet, "/api/v1/tasks", "", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous list: %d", rec.Code)
	}
}
