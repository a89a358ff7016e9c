package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core/ratelimit"
)

// rateLimitMiddleware counts the request of the context user against endpoint.
// Must run after sessionMiddleware.
func (s *Server) rateLimitMiddleware(endpoint string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return err
			}
			if err = s.deps.Limiter.Allow(ctx.Request().Context(), usr.ID, endpoint); err != nil {
				if err == ratelimit.ErrLimitExceeded {
					return err
				}
				return errors.Wrap(err, "checking rate limit")
			}
			return next(ctx)
		}
	}
}
