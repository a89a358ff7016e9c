package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core/task"
	"github.com/trezcool/kazi/core/user"
)

var contextUserKey = "user"

// sessionMiddleware authenticates the request from the session cookie and stores the User in the context.
// Every failure, including an unknown or archived user, is a 401.
func (s *Server) sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		cookie, err := ctx.Cookie(s.deps.Conf.Server.SessionCookieName)
		if err != nil || cookie.Value == "" {
			return errUnauthorized
		}
		userID, err := s.deps.Sessions.Verify(cookie.Value)
		if err != nil {
			return errUnauthorized
		}
		usr, err := s.deps.UserSvc.GetByID(ctx.Request().Context(), userID)
		if err != nil {
			if err == user.ErrNotFound {
				return errUnauthorized
			}
			return errors.Wrap(err, "finding session user")
		}
		ctx.Set(contextUserKey, usr)
		return next(ctx)
	}
}

func getContextUser(ctx echo.Context) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}
	return user.User{}, errUnauthorized
}

func getContextPrincipal(ctx echo.Context) (task.Principal, error) {
	usr, err := getContextUser(ctx)
	if err != nil {
		return task.Principal{}, err
	}
	return task.PrincipalOf(usr), nil
}

func (s *Server) newSessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     s.deps.Conf.Server.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.deps.Conf.Server.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

// startSession issues a token for usr and sets it as the session cookie.
func (s *Server) startSession(ctx echo.Context, usr user.User) error {
	token, err := s.deps.Sessions.Generate(usr.ID)
	if err != nil {
		return errors.Wrap(err, "generating session token")
	}
	ctx.SetCookie(s.newSessionCookie(token, int(s.deps.Sessions.TTL().Seconds())))
	return nil
}

func (s *Server) endSession(ctx echo.Context) {
	ctx.SetCookie(s.newSessionCookie("", -1))
}
