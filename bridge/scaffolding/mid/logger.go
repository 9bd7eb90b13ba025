package mid

import (
	"context"
	"net/http"
	"time"

	"github.com/jrazmi/todolist/infrastructure/web"
	"github.com/jrazmi/todolist/sdk/logger"
)

type statuser interface {
	HTTPStatus() int
}

// Logger writes one line when a request starts and one when it completes.
func Logger(log *logger.Logger, tel web.Telemetry) web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			start := time.Now()
			traceID := tel.GetTraceID(ctx)

			log.InfoContext(ctx, "request started",
				"trace_id", traceID,
				"method", r.Method,
				"path", r.URL.Path,
				"remoteaddr", r.RemoteAddr)

			resp := next(ctx, r)

			status := http.StatusOK
			switch v := resp.(type) {
			case nil:
				status = http.StatusNoContent
			case statuser:
				status = v.HTTPStatus()
			case error:
				status = http.StatusInternalServerError
			}

			log.InfoContext(ctx, "request completed",
				"trace_id", traceID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"since", time.Since(start).String())

			return resp
		}
	}
}
