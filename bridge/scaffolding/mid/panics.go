package mid

import (
	"context"
	"net/http"
	"runtime/debug"

	"github.com/jrazmi/todolist/bridge/scaffolding/errs"
	"github.com/jrazmi/todolist/infrastructure/web"
)

// Panics turns a panic in the handler chain into an internal error so the
// Errors middleware logs it and the server keeps running.
func Panics() web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) (resp web.Encoder) {
			defer func() {
				if rec := recover(); rec != nil {
					resp = errs.Newf(errs.InternalOnlyLog, "PANIC [%v] TRACE[%s]", rec, debug.Stack())
				}
			}()

			return next(ctx, r)
		}
	}
}
