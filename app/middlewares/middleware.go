package middlewares

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/rs/zerolog"
)

// RequestLogger writes one zerolog event per request once the response is done.
func RequestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return handlers.CustomLoggingHandler(io.Discard, next, func(_ io.Writer, p handlers.LogFormatterParams) {
			event := logger.Info()
			if p.StatusCode >= http.StatusInternalServerError {
				event = logger.Error()
			} else if p.StatusCode >= http.StatusBadRequest {
				event = logger.Warn()
			}
			event.
				Str("method", p.Request.Method).
				Str("path", p.URL.Path).
				Int("status", p.StatusCode).
				Int("size", p.Size).
				Str("remote", p.Request.RemoteAddr).
				Dur("latency", time.Since(p.TimeStamp)).
				Msg("request")
		})
	}
}

type recoveryLogger struct {
	logger zerolog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error().Msg(strings.TrimSpace(fmt.Sprintln(v...)))
}

// Recovery turns a panic into a 500 and logs it.
func Recovery(logger zerolog.Logger) func(http.Handler) http.Handler {
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger: logger}),
		handlers.PrintRecoveryStack(false),
	)
}

// CORS allows browser clients of the JSON API.
func CORS(origins []string) func(http.Handler) http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type", "Authorization"}),
		handlers.AllowCredentials(),
	)
}
