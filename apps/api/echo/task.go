package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core/task"
)

// taskOrderingFields maps the accepted `ordering` fields to their column.
var taskOrderingFields = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"dueDate":   "due_date",
	"priority":  "priority",
	"status":    "status",
	"title":     "title",
}

type taskApi struct {
	s *Server
}

func registerTaskAPI(g *echo.Group, s *Server) {
	api := taskApi{s: s}

	tg := g.Group("/tasks", s.sessionMiddleware)
	tg.GET("", api.query)
	tg.POST("", api.create)

	// detail endpoints
	dg := tg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.archive)
	dg.GET("/progress", api.queryProgress)
	dg.POST("/progress", api.createProgress)
}

// Handlers

func (api *taskApi) create(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	if !task.CanCreate(p) {
		return task.ErrForbidden
	}

	var data task.NewTask
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	if err = data.Validate(api.s.deps.Validate); err != nil {
		return err
	}

	t, err := api.s.deps.TaskSvc.Create(ctx.Request().Context(), p, data)
	if err != nil {
		return errors.Wrap(err, "creating task")
	}
	return ctx.JSON(http.StatusCreated, ok(t, "Task created successfully"))
}

func (api *taskApi) query(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var filter task.QueryFilter
	if err = (&echo.DefaultBinder{}).BindQueryParams(ctx, &filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	ordering := new(Ordering)
	ordering.Bind(ctx, taskOrderingFields)
	filter.Ordering = ordering.Orderings
	if err = filter.Validate(api.s.deps.Validate); err != nil {
		return err
	}

	tasks, page, err := api.s.deps.TaskSvc.Query(ctx.Request().Context(), p, filter)
	if err != nil {
		return errors.Wrap(err, "querying tasks")
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return ctx.JSON(http.StatusOK, Response{Success: true, Data: tasks, Pagination: &page})
}

func (api *taskApi) retrieve(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	t, err := api.s.deps.TaskSvc.Get(ctx.Request().Context(), p, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "retrieving task")
	}
	return ctx.JSON(http.StatusOK, ok(t))
}

func (api *taskApi) update(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data task.UpdateTask
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTask")
	}
	if err = data.Validate(api.s.deps.Validate); err != nil {
		return err
	}

	t, err := api.s.deps.TaskSvc.Update(ctx.Request().Context(), p, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating task")
	}
	return ctx.JSON(http.StatusOK, ok(t))
}

func (api *taskApi) archive(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	if err = api.s.deps.TaskSvc.Archive(ctx.Request().Context(), p, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "archiving task")
	}
	return ctx.JSON(http.StatusOK, Response{Success: true, Message: "Task deleted successfully"})
}

func (api *taskApi) createProgress(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data task.NewProgress
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProgress")
	}
	if err = data.Validate(api.s.deps.Validate); err != nil {
		return err
	}

	pr, err := api.s.deps.TaskSvc.SubmitProgress(ctx.Request().Context(), p, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "submitting progress")
	}
	return ctx.JSON(http.StatusCreated, ok(pr, "Progress updated successfully"))
}

func (api *taskApi) queryProgress(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	logs, err := api.s.deps.TaskSvc.ListProgress(ctx.Request().Context(), p, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying progress")
	}
	if logs == nil {
		logs = []task.Progress{}
	}
	return ctx.JSON(http.StatusOK, ok(logs))
}
