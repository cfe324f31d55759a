package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/api/transport"
	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
	"github.com/fastygo/tasktracker/repository"
	taskUC "github.com/fastygo/tasktracker/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List own tasks
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	userID, ok := h.identity(ctx)
	if !ok {
		return
	}
	filter, ok := h.filter(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListTasks(stdCtx, userID, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary List a user's tasks; the user must be the caller
// @Tags tasks
// @Router /api/v1/users/{user_id}/tasks [get]
func (h *TaskHandler) GetUserTasks(ctx *fasthttp.RequestCtx) {
	userID, ok := h.identity(ctx)
	if !ok {
		return
	}
	filter, ok := h.filter(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.ListUserTasks(stdCtx, userID, pathValue(ctx, "user_id"), filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tasks)
}

// @Summary Get task
// @Tags tasks
// @Router /api/v1/tasks/{id} [get]
func (h *TaskHandler) GetTask(ctx *fasthttp.RequestCtx) {
	userID, ok := h.identity(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.GetTask(stdCtx, userID, pathValue(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, task)
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	userID, ok := h.identity(ctx)
	if !ok {
		return
	}
	in, ok := h.parseTask(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.CreateTask(stdCtx, userID, in)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update task
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	userID, ok := h.identity(ctx)
	if !ok {
		return
	}
	in, ok := h.parseTask(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.UpdateTask(stdCtx, userID, pathValue(ctx, "id"), in)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	userID, ok := h.identity(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id := pathValue(ctx, "id")
	if err := h.uc.DeleteTask(stdCtx, userID, id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"message": "task " + id + " deleted"})
}

// @Summary Task totals per status
// @Tags stats
// @Router /api/v1/users/{user_id}/stats [get]
func (h *TaskHandler) GetStatusStats(ctx *fasthttp.RequestCtx) {
	userID, ok := h.identity(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	stats, err := h.uc.StatusStats(stdCtx, userID, pathValue(ctx, "user_id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, stats)
}

// @Summary Task counts per category
// @Tags stats
// @Param status query string false "task status, completed by default"
// @Param from query string false "inclusive lower bound on task time"
// @Param to query string false "exclusive upper bound on task time"
// @Router /api/v1/users/{user_id}/stats/categories [get]
func (h *TaskHandler) GetCategoryStats(ctx *fasthttp.RequestCtx) {
	userID, ok := h.identity(ctx)
	if !ok {
		return
	}

	args := ctx.QueryArgs()
	status, ok := h.status(ctx, string(args.Peek("status")))
	if !ok {
		return
	}
	if status == "" {
		status = domain.TaskStatusCompleted
	}

	var window domain.TimeWindow
	for _, bound := range []struct {
		name string
		dst  *time.Time
	}{{"from", &window.From}, {"to", &window.To}} {
		raw := string(args.Peek(bound.name))
		if raw == "" {
			continue
		}
		t, err := transport.ParseTime(raw)
		if err != nil {
			h.badRequest(ctx, bound.name+" must be an ISO 8601 timestamp")
			return
		}
		*bound.dst = t
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	owner := pathValue(ctx, "user_id")
	counts, err := h.uc.CategoryStats(stdCtx, userID, owner, status, window)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.CategoryStatsResponse{
		UserID:     owner,
		Status:     status,
		Window:     window,
		Categories: counts,
	})
}

func (h *TaskHandler) parseTask(ctx *fasthttp.RequestCtx) (taskUC.Input, bool) {
	var req transport.TaskRequest
	if !h.decode(ctx, &req) {
		return taskUC.Input{}, false
	}
	at, err := req.Validate()
	if err != nil {
		h.respondError(ctx, err)
		return taskUC.Input{}, false
	}
	return taskUC.Input{
		Name:     req.Name,
		Category: req.Category,
		Time:     at,
		Status:   req.Status,
	}, true
}

func (h *TaskHandler) filter(ctx *fasthttp.RequestCtx) (repository.TaskFilter, bool) {
	args := ctx.QueryArgs()
	status, ok := h.status(ctx, string(args.Peek("status")))
	if !ok {
		return repository.TaskFilter{}, false
	}
	return repository.TaskFilter{
		Status: status,
		Limit:  parseInt(string(args.Peek("limit")), 50),
		Offset: max(parseInt(string(args.Peek("offset")), 0), 0),
	}, true
}

func (h *TaskHandler) status(ctx *fasthttp.RequestCtx, raw string) (string, bool) {
	status := strings.ToLower(strings.TrimSpace(raw))
	if status != "" && !domain.IsValidTaskStatus(status) {
		h.badRequest(ctx, "status must be one of: pending, in_progress, completed")
		return "", false
	}
	return status, true
}

func pathValue(ctx *fasthttp.RequestCtx, name string) string {
	v, _ := ctx.UserValue(name).(string)
	return v
}
