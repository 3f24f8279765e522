package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type errorBody struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// statusOf maps a service error to its HTTP status.
func statusOf(err error) int {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrSignature),
		errors.Is(err, service.ErrUnhandledEvent):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, middleware.ErrNoIdentity):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// ErrorHandler renders every error as {"message": ...}. Internal failures get a generic
// message; the underlying error is added as "detail" only when dev is set.
func ErrorHandler(dev bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := statusOf(err)
		body := errorBody{Message: err.Error()}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			body.Message = fmt.Sprint(he.Message)
			if dev && he.Internal != nil {
				body.Detail = he.Internal.Error()
			}
		} else if code >= http.StatusInternalServerError {
			body.Message = http.StatusText(code)
			if dev {
				body.Detail = err.Error()
			}
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.JSON(code, body)
		}
		if werr != nil {
			c.Logger().Error(werr)
		}
	}
}

// fail logs a handler error at a level matching its status and hands it to ErrorHandler.
func fail(l *slog.Logger, msg string, err error) error {
	code := statusOf(err)
	if code >= http.StatusInternalServerError {
		l.Error(msg, "status", code, "error", err)
	} else {
		l.Warn(msg, "status", code, "error", err)
	}
	return err
}
