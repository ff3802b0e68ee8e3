package middleware

import (
	"net"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/iho/cambio/internal/domain"
)

const maxUserAgent = 512

// RequestMeta records who sent the request so audit entries can name it.
// Mount it after chi's RequestID and RealIP.
func RequestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua := r.UserAgent()
		if len(ua) > maxUserAgent {
			ua = ua[:maxUserAgent]
		}

		meta := domain.RequestMeta{
			RequestID: chimw.GetReqID(r.Context()),
			IPAddress: clientIP(r.RemoteAddr),
			UserAgent: ua,
		}
		next.ServeHTTP(w, r.WithContext(domain.ContextWithRequestMeta(r.Context(), meta)))
	})
}

// clientIP drops the port RealIP leaves on direct connections.
func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
