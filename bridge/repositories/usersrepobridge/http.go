// Package usersrepobridge exposes sign-up and token issue over HTTP.
package usersrepobridge

import (
	"github.com/jrazmi/todolist/core/auth"
	"github.com/jrazmi/todolist/core/repositories/usersrepo"
	"github.com/jrazmi/todolist/infrastructure/web"
	"github.com/jrazmi/todolist/sdk/logger"
)

// Config holds configuration for the User bridge
type Config struct {
	Log        *logger.Logger
	Repository *usersrepo.Repository
	Auth       *auth.Auth
	Middleware []web.Middleware
}

// AddHttpRoutes registers the sign-up and token routes. Neither requires an
// authenticated caller.
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg.Log, cfg.Repository, cfg.Auth)

	group.POST("/users", b.httpCreate, cfg.Middleware...)
	group.POST("/auth/token", b.httpToken, cfg.Middleware...)
}
