package tasksrepobridge

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/jrazmi/todolist/bridge/scaffolding/errs"
	"github.com/jrazmi/todolist/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/todolist/bridge/scaffolding/mid"
	"github.com/jrazmi/todolist/core/repositories"
	"github.com/jrazmi/todolist/core/repositories/tasksrepo"
	"github.com/jrazmi/todolist/core/scaffolding/fop"
	"github.com/jrazmi/todolist/core/scaffolding/ids"
	"github.com/jrazmi/todolist/infrastructure/web"
	"github.com/jrazmi/todolist/sdk/logger"
)

// bridge provides HTTP handlers for Task operations.
type bridge struct {
	log            *logger.Logger
	taskRepository *tasksrepo.Repository
}

func newBridge(log *logger.Logger, taskRepository *tasksrepo.Repository) *bridge {
	return &bridge{
		log:            log,
		taskRepository: taskRepository,
	}
}

func (b *bridge) httpList(ctx context.Context, r *http.Request) web.Encoder {
	ownerID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	page, err := fopbridge.ParsePage(r)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	result, err := b.taskRepository.List(ctx, ownerID, page)
	if err != nil {
		return toError(err)
	}

	fopbridge.SetNextLink(web.GetWriter(ctx), r, page.Limit, result)

	return web.NewJSONResponse(MarshalListToBridge(result.Items))
}

func (b *bridge) httpGetByID(ctx context.Context, r *http.Request) web.Encoder {
	ownerID, taskID, failure := b.taskKey(ctx, r)
	if failure != nil {
		return failure
	}

	task, err := b.taskRepository.Get(ctx, ownerID, taskID)
	if err != nil {
		return toError(err)
	}

	return web.NewJSONResponse(MarshalToBridge(task))
}

func (b *bridge) httpCreate(ctx context.Context, r *http.Request) web.Encoder {
	ownerID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	var input CreateTaskInput
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	task, err := b.taskRepository.Create(ctx, ownerID, MarshalCreateToRepository(input))
	if err != nil {
		return toError(err)
	}

	return web.NewJSONResponseWithStatus(MarshalToBridge(task), http.StatusCreated)
}

func (b *bridge) httpUpdate(ctx context.Context, r *http.Request) web.Encoder {
	ownerID, taskID, failure := b.taskKey(ctx, r)
	if failure != nil {
		return failure
	}

	var input UpdateTaskInput
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	task, err := b.taskRepository.Update(ctx, ownerID, taskID, MarshalUpdateToRepository(input))
	if err != nil {
		return toError(err)
	}

	return web.NewJSONResponse(MarshalToBridge(task))
}

func (b *bridge) httpDelete(ctx context.Context, r *http.Request) web.Encoder {
	ownerID, taskID, failure := b.taskKey(ctx, r)
	if failure != nil {
		return failure
	}

	if err := b.taskRepository.Delete(ctx, ownerID, taskID); err != nil {
		return toError(err)
	}

	return web.NewNoContent()
}

// taskKey reads the caller and the task id in the path.
func (b *bridge) taskKey(ctx context.Context, r *http.Request) (uuid.UUID, uuid.UUID, *errs.Error) {
	ownerID, err := mid.GetUserID(ctx)
	if err != nil {
		return uuid.Nil, uuid.Nil, errs.New(errs.Unauthenticated, err)
	}

	taskID, err := ids.Decode(web.Param(r, "task_id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, errs.New(errs.InvalidArgument, err)
	}

	return ownerID, taskID, nil
}

func toError(err error) *errs.Error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return errs.Newf(errs.NotFound, "task not found")
	case errors.Is(err, fop.ErrInvalidCursor),
		errors.Is(err, fop.ErrInvalidPage),
		errors.Is(err, tasksrepo.ErrEmptyText),
		errors.Is(err, tasksrepo.ErrTextTooLong):
		return errs.New(errs.InvalidArgument, err)
	default:
		return errs.New(errs.InternalOnlyLog, err)
	}
}
