package echoapi

import (
	"fmt"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/ratelimit"
	"github.com/trezcool/kazi/core/session"
	"github.com/trezcool/kazi/core/task"
	"github.com/trezcool/kazi/core/user"
)

var (
	errUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	errNotFound     = echo.NewHTTPError(http.StatusNotFound, "Not found")

	validationErrorText = "Validation error"
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		resp := ErrorResponse{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			resp.Error = fmt.Sprint(origErr.Message)
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			resp.Error = validationErrorText
			resp.Details = details(core.TranslateErrors(origErr, translator))
		case *core.ValidationError:
			code = http.StatusBadRequest
			if origErr.Err != nil {
				resp.Error = origErr.Err.Error()
			} else {
				resp.Error = validationErrorText
			}
			if len(origErr.Fields) > 0 {
				resp.Details = details(origErr.Fields)
			}
		default:
			switch origErr {
			case session.ErrInvalidToken:
				code = http.StatusUnauthorized
				resp.Error = errUnauthorized.Message.(string)
			case user.ErrInvalidCredentials:
				code = http.StatusUnauthorized
				resp.Error = origErr.Error()
			case task.ErrForbidden:
				code = http.StatusForbidden
				resp.Error = http.StatusText(http.StatusForbidden)
				resp.Message = origErr.Error()
			case task.ErrNotFound:
				code = http.StatusNotFound
				resp.Error = origErr.Error()
			case user.ErrNotFound:
				code = http.StatusNotFound
				resp.Error = errNotFound.Message.(string)
			case user.ErrInvalidLink:
				code = http.StatusBadRequest
				resp.Error = origErr.Error()
			case ratelimit.ErrLimitExceeded:
				code = http.StatusTooManyRequests
				resp.Error = origErr.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				resp.Error = msg

				usr, _ := ctx.Get(contextUserKey).(user.User)
				logger.Error(msg, errors.Wrap(err, msg), usr)

				if ctx.Echo().Debug {
					resp.Message = err.Error()
				}

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, resp)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
