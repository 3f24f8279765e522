package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
)

const bodyLimit = "2M"

// Common is the chain every request passes before routing.
func Common(logger *slog.Logger, origins ...string) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		echomw.Recover(),
		echomw.RequestID(),
		loggingmw.RequestLogger(logger),
		echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     origins,
			AllowCredentials: true,
		}),
		echomw.Secure(),
		echomw.BodyLimit(bodyLimit),
	}
}
