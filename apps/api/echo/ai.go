package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core/insight"
)

// rate limited endpoints
const (
	endpointTaskBreakdown    = "task-breakdown"
	endpointProgressSummary  = "progress-summary"
	endpointStudySuggestions = "study-suggestions"
)

type aiApi struct {
	s *Server
}

func registerAIAPI(g *echo.Group, s *Server) {
	api := aiApi{s: s}

	ag := g.Group("/ai", s.sessionMiddleware)
	ag.POST("/"+endpointTaskBreakdown, api.taskBreakdown, s.rateLimitMiddleware(endpointTaskBreakdown))
	ag.POST("/"+endpointProgressSummary, api.progressSummary, s.rateLimitMiddleware(endpointProgressSummary))
	ag.POST("/"+endpointStudySuggestions, api.studySuggestions, s.rateLimitMiddleware(endpointStudySuggestions))
	ag.GET("/insights", api.queryInsights)
}

// Handlers

func (api *aiApi) taskBreakdown(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var data insight.BreakdownRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BreakdownRequest")
	}
	if err = data.Validate(api.s.deps.Validate); err != nil {
		return err
	}

	breakdown, err := api.s.deps.InsightSvc.TaskBreakdown(ctx.Request().Context(), p, data.TaskID)
	if err != nil {
		return errors.Wrap(err, "generating task breakdown")
	}
	return ctx.JSON(http.StatusOK, ok(breakdown, "Task breakdown generated successfully"))
}

func (api *aiApi) progressSummary(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	summary, stats, err := api.s.deps.InsightSvc.ProgressSummary(ctx.Request().Context(), p)
	if err != nil {
		return errors.Wrap(err, "generating progress summary")
	}
	resp := ok(summary, "Progress summary generated successfully")
	resp.Metadata = stats
	return ctx.JSON(http.StatusOK, resp)
}

func (api *aiApi) studySuggestions(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	suggestions, err := api.s.deps.InsightSvc.StudySuggestions(ctx.Request().Context(), p)
	if err != nil {
		return errors.Wrap(err, "generating study suggestions")
	}
	return ctx.JSON(http.StatusOK, ok(suggestions, "Study suggestions generated successfully"))
}

func (api *aiApi) queryInsights(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}

	var filter insight.QueryFilter
	if err = (&echo.DefaultBinder{}).BindQueryParams(ctx, &filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	if err = filter.Validate(api.s.deps.Validate); err != nil {
		return err
	}

	insights, err := api.s.deps.InsightSvc.ListInsights(ctx.Request().Context(), p, filter)
	if err != nil {
		return errors.Wrap(err, "querying insights")
	}
	if insights == nil {
		insights = []insight.Insight{}
	}
	return ctx.JSON(http.StatusOK, ok(insights))
}
