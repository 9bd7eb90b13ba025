package web_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jrazmi/todolist/infrastructure/web"
)

type item struct {
	Name string `json:"name"`
}

func (i item) Validate() error {
	if i.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func serve(wh *web.WebHandler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	wh.ServeHTTP(rec, req)
	return rec
}

func TestRespondStatuses(t *testing.T) {
	wh := web.NewWebHandler(web.HandlerOptions{})
	g := wh.Group("/v1/")
	g.GET("/json", func(context.Context, *http.Request) web.Encoder {
		return web.NewJSONResponse(item{Name: "a"})
	})
	g.POST("/created", func(context.Context, *http.Request) web.Encoder {
		return web.NewJSONResponseWithStatus(item{Name: "b"}, http.StatusCreated)
	})
	g.DELETE("/gone", func(context.Context, *http.Request) web.Encoder {
		return web.NewNoContent()
	})
	g.PATCH("/nil", func(context.Context, *http.Request) web.Encoder {
		return nil
	})

	tests := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{http.MethodGet, "/v1/json", http.StatusOK, `{"name":"a"}`},
		{http.MethodPost, "/v1/created", http.StatusCreated, `{"name":"b"}`},
		{http.MethodDelete, "/v1/gone", http.StatusNoContent, ""},
		{http.MethodPatch, "/v1/nil", http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		rec := serve(wh, tt.method, tt.path, "", nil)
		if rec.Code != tt.status {
			t.Errorf("%s %s: status %d, want %d", tt.method, tt.path, rec.Code, tt.status)
		}
		if got := rec.Body.String(); got != tt.body {
			t.Errorf("%s %s: body %q, want %q", tt.method, tt.path, got, tt.body)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	wh := web.NewWebHandler(web.HandlerOptions{CORSOrigins: []string{"https://app.example.com"}})
	wh.GET("/things", func(context.Context, *http.Request) web.Encoder {
		return web.NewJSONResponse([]item{})
	})

	rec := serve(wh, http.MethodOptions, "/things", "", map[string]string{"Origin": "https://app.example.com"})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", rec.Code)
	}
	h := rec.Header()
	if h.Get("Access-Control-Allow-Origin") != "https://app.example.com" || h.Get("Access-Control-Allow-Credentials") != "true" {
		t.Errorf("allow origin headers = %v", h)
	}
	if h.Get("Access-Control-Expose-Headers") != "Link" {
		t.Errorf("expose headers = %q", h.Get("Access-Control-Expose-Headers"))
	}

	rec = serve(wh, http.MethodGet, "/things", "", map[string]string{"Origin": "https://evil.example.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("foreign origin allowed: %q", got)
	}
	if got := rec.Body.String(); got != "[]" {
		t.Errorf("body = %q", got)
	}
}

func TestNoCORSWithoutOrigins(t *testing.T) {
	wh := web.NewWebHandler(web.HandlerOptions{})
	wh.GET("/things", func(context.Context, *http.Request) web.Encoder {
		return web.NewNoContent()
	})

	rec := serve(wh, http.MethodOptions, "/things", "", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("preflight without cors = %d, want 405", rec.Code)
	}
}

func TestGlobalMiddlewareOrder(t *testing.T) {
	var order []string
	mw := func(name string) web.Middleware {
		return func(next web.HandlerFunc) web.HandlerFunc {
			return func(ctx context.Context, r *http.Request) web.Encoder {
				order = append(order, name)
				return next(ctx, r)
			}
		}
	}

	wh := web.NewWebHandler(web.HandlerOptions{},
		web.WithGlobalMiddleware(mw("global")),
		web.WithDefaultHeaders(map[string]string{"X-Service": "todo"}),
	)
	g := wh.Group("/api", mw("group"))
	g.GET("/x", func(ctx context.Context, r *http.Request) web.Encoder {
		order = append(order, "handler")
		if web.GetWriter(ctx) == nil {
			t.Error("writer missing from context")
		}
		return web.NewNoContent()
	}, mw("route"))

	rec := serve(wh, http.MethodGet, "/api/x", "", nil)
	if got := strings.Join(order, ","); got != "global,group,route,handler" {
		t.Errorf("order = %s", got)
	}
	if rec.Header().Get("X-Service") != "todo" {
		t.Errorf("default header missing: %v", rec.Header())
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		body    string
		wantErr bool
	}{
		{body: `{"name":"a"}`},
		{body: "", wantErr: true},
		{body: `{"name":`, wantErr: true},
		{body: `{"name":""}`, wantErr: true},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
		var v item
		err := web.Decode(req, &v)
		if (err != nil) != tt.wantErr {
			t.Errorf("Decode(%q) error = %v, wantErr %v", tt.body, err, tt.wantErr)
		}
	}
}
