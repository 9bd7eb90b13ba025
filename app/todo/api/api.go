// Package api mounts the todo service's HTTP routes.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jrazmi/todolist/app/todo/config"
	"github.com/jrazmi/todolist/bridge/repositories/tasksrepobridge"
	"github.com/jrazmi/todolist/bridge/repositories/usersrepobridge"
	"github.com/jrazmi/todolist/bridge/scaffolding/errs"
	"github.com/jrazmi/todolist/bridge/scaffolding/mid"
	"github.com/jrazmi/todolist/core/auth"
	"github.com/jrazmi/todolist/infrastructure/web"
)

// AddHandlers registers every route of the service under config.ApiRoute.
func AddHandlers(wh *web.WebHandler, cfg config.Todo, a *auth.Auth) {
	group := wh.Group(config.ApiRoute)

	group.GET("/healthz", healthz(cfg))

	usersrepobridge.AddHttpRoutes(group, usersrepobridge.Config{
		Log:        cfg.Logger,
		Repository: cfg.Repositories.Users,
		Auth:       a,
	})

	tasksrepobridge.AddHttpRoutes(group, tasksrepobridge.Config{
		Log:        cfg.Logger,
		Repository: cfg.Repositories.Tasks,
		Middleware: []web.Middleware{mid.Authenticate(a)},
	})
}

// health is the healthz body.
type health struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Build   string `json:"build"`
}

func healthz(cfg config.Todo) web.HandlerFunc {
	return func(ctx context.Context, r *http.Request) web.Encoder {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		if err := cfg.StatusCheck(ctx); err != nil {
			return errs.Newf(errs.Internal, "database unavailable")
		}

		return web.NewJSONResponse(health{
			Code:    "ok",
			Message: "database reachable",
			Build:   cfg.Build,
		})
	}
}
