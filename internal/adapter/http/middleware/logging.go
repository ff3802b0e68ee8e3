package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// AccessLog writes one line per request. Server errors log at error level and
// client errors at warn, so a quiet log level still shows rejected operations.
type AccessLog struct {
	logger zerolog.Logger
	now    func() time.Time
}

// NewAccessLog creates an AccessLog writing to logger.
func NewAccessLog(logger zerolog.Logger) *AccessLog {
	return &AccessLog{logger: logger, now: time.Now}
}

// Wrap is the chi middleware.
func (a *AccessLog) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := a.now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		a.levelFor(status).
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("route", routePattern(r)).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", a.now().Sub(start)).
			Str("remote_addr", r.RemoteAddr).
			Msg("request completed")
	})
}

func (a *AccessLog) levelFor(status int) *zerolog.Event {
	switch {
	case status >= http.StatusInternalServerError:
		return a.logger.Error()
	case status >= http.StatusBadRequest:
		return a.logger.Warn()
	default:
		return a.logger.Info()
	}
}
