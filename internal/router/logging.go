package router

import (
	"expvar"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

var (
	requestsTotal  = expvar.NewInt("requests_total")
	requestsErrors = expvar.NewInt("requests_errors_total")
)

// requestLogger writes one log line per request and counts requests for
// /metrics.
func requestLogger() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			requestsTotal.Add(1)
			if v.Status >= http.StatusBadRequest {
				requestsErrors.Add(1)
			}
			log.Printf("request method=%s uri=%s status=%d duration_ms=%d remote=%s request_id=%s",
				v.Method, v.URI, v.Status, v.Latency.Milliseconds(), v.RemoteIP, v.RequestID)
			return nil
		},
	})
}
