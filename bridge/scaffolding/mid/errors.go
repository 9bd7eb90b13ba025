package mid

import (
	"context"
	"errors"
	"net/http"
	"path"

	"github.com/jrazmi/todolist/bridge/scaffolding/errs"
	"github.com/jrazmi/todolist/infrastructure/web"
	"github.com/jrazmi/todolist/sdk/logger"
)

// Errors handles errors coming out of the call chain. Anything that is not an
// *errs.Error becomes a bare internal error so no detail leaks to the caller.
func Errors(log *logger.Logger) web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			resp := next(ctx, r)
			err := isError(resp)
			if err == nil {
				return resp
			}

			var appErr *errs.Error
			if !errors.As(err, &appErr) {
				appErr = errs.Newf(errs.InternalOnlyLog, "%s", err)
			}

			attrs := []any{
				"err", err,
				"code", appErr.Code,
				"source_err_file", path.Base(appErr.FileName),
				"source_err_func", path.Base(appErr.FuncName),
			}
			if appErr.HTTPStatus() >= http.StatusInternalServerError {
				log.ErrorContext(ctx, "handled error during request", attrs...)
			} else {
				log.InfoContext(ctx, "request rejected", attrs...)
			}

			if appErr.Code == errs.InternalOnlyLog {
				appErr = errs.Newf(errs.Internal, "Internal Server Error")
			}

			return appErr
		}
	}
}
