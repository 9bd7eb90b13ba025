package usersrepobridge

import (
	"context"
	"errors"
	"net/http"

	"github.com/jrazmi/todolist/bridge/scaffolding/errs"
	"github.com/jrazmi/todolist/bridge/scaffolding/mid"
	"github.com/jrazmi/todolist/core/auth"
	"github.com/jrazmi/todolist/core/repositories"
	"github.com/jrazmi/todolist/core/repositories/usersrepo"
	"github.com/jrazmi/todolist/infrastructure/web"
	"github.com/jrazmi/todolist/sdk/logger"
)

// bridge provides HTTP handlers for User operations.
type bridge struct {
	log            *logger.Logger
	userRepository *usersrepo.Repository
	auth           *auth.Auth
}

func newBridge(log *logger.Logger, userRepository *usersrepo.Repository, a *auth.Auth) *bridge {
	return &bridge{
		log:            log,
		userRepository: userRepository,
		auth:           a,
	}
}

func (b *bridge) httpCreate(ctx context.Context, r *http.Request) web.Encoder {
	var input CreateUserInput
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrWeakPassword) {
			return errs.New(errs.InvalidArgument, err)
		}
		return errs.New(errs.InternalOnlyLog, err)
	}

	user, err := b.userRepository.Create(ctx, usersrepo.CreateUser{
		Email:        input.Email,
		PasswordHash: hash,
	})
	if err != nil {
		switch {
		case errors.Is(err, usersrepo.ErrInvalidEmail):
			return errs.New(errs.InvalidArgument, err)
		case errors.Is(err, repositories.ErrAlreadyExists):
			return errs.Newf(errs.AlreadyExists, "email already registered")
		default:
			return errs.New(errs.InternalOnlyLog, err)
		}
	}

	return web.NewJSONResponseWithStatus(MarshalToBridge(user), http.StatusCreated)
}

// httpToken issues a token. A bearer header asks for a refresh of that token,
// which may have expired; otherwise the body must carry credentials.
func (b *bridge) httpToken(ctx context.Context, r *http.Request) web.Encoder {
	if bearer, ok := mid.BearerToken(r); ok {
		tok, err := b.auth.Refresh(ctx, bearer)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrRefreshWindow) {
				return errs.New(errs.Unauthenticated, err)
			}
			return errs.New(errs.InternalOnlyLog, err)
		}
		return web.NewJSONResponse(MarshalTokenToBridge(tok))
	}

	var input CredentialsInput
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	tok, err := b.auth.Authenticate(ctx, input.Email, input.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return errs.New(errs.Unauthenticated, err)
		}
		return errs.New(errs.InternalOnlyLog, err)
	}

	return web.NewJSONResponse(MarshalTokenToBridge(tok))
}
