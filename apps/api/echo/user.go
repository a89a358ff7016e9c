package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core/user"
)

type authApi struct {
	s *Server
}

func registerAuthAPI(g *echo.Group, s *Server) {
	api := authApi{s: s}

	ag := g.Group("/auth")

	// un-authed endpoints
	ag.POST("/register", api.register)
	ag.POST("/login", api.login)
	ag.POST("/signout", api.signout)
	ag.POST("/verify-email", api.verifyEmail)

	// authed endpoints
	ag.GET("/me", api.me, s.sessionMiddleware)
}

// Handlers

func (api *authApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.s.deps.Validate); err != nil {
		return err
	}

	usr, err := api.s.deps.UserSvc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	if err = api.s.startSession(ctx, usr); err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, ok(usr, "Registration successful"))
}

func (api *authApi) login(ctx echo.Context) error {
	var data user.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	if err := data.Validate(api.s.deps.Validate); err != nil {
		return err
	}

	usr, err := api.s.deps.UserSvc.Authenticate(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	if err = api.s.startSession(ctx, usr); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ok(usr, "Login successful"))
}

func (api *authApi) signout(ctx echo.Context) error {
	api.s.endSession(ctx)
	return ctx.JSON(http.StatusOK, Response{Success: true})
}

func (api *authApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ok(usr))
}

func (api *authApi) verifyEmail(ctx echo.Context) error {
	var data user.VerifyEmail
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VerifyEmail")
	}
	if err := data.Validate(api.s.deps.Validate); err != nil {
		return err
	}

	usr, err := api.s.deps.UserSvc.VerifyEmail(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "verifying email")
	}
	return ctx.JSON(http.StatusOK, ok(usr, "Email verified"))
}
