package middleware

import (
	"time"

	"MarketMind/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs one structured line per request.
func RequestLogging(l *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			err := next(c)

			if l != nil {
				l.Info("http request",
					logger.String("method", req.Method),
					logger.String("uri", req.RequestURI),
					logger.String("remote", req.RemoteAddr),
					logger.Int("status", res.Status),
					logger.Duration("latency", time.Since(start)),
				)
			}

			return err
		}
	}
}
