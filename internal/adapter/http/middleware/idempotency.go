package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/iho/cambio/internal/domain"
	"github.com/iho/cambio/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader marks a response served from the store.
	IdempotencyReplayHeader = "X-Idempotency-Replay"
	// DefaultIdempotencyTTL is used when no TTL is configured.
	DefaultIdempotencyTTL = 24 * time.Hour

	processingMarker = "processing"
	maxKeyLength     = 255
	maxRecordedBody  = 1 << 20
)

// storedResponse is what the store keeps for a completed request.
type storedResponse struct {
	Status      int             `json:"status"`
	Fingerprint string          `json:"fingerprint,omitempty"`
	Body        json.RawMessage `json:"body,omitempty"`
}

// IdempotencyMiddleware replays the stored response of a mutating request
// that carries an already used Idempotency-Key. Keys are scoped to the actor
// and route, and reusing one with a different body is rejected.
type IdempotencyMiddleware struct {
	store usecase.IdempotencyStore
	ttl   time.Duration
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl}
}

// Wrap is the chi middleware.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(IdempotencyKeyHeader)
		if header == "" || !isMutating(r.Method) {
			next.ServeHTTP(w, r)
			return
		}
		if len(header) > maxKeyLength {
			writeJSONError(w, http.StatusBadRequest, "idempotency key too long")
			return
		}

		fingerprint, err := fingerprintBody(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "unreadable request body")
			return
		}

		key := scopedKey(r, header)
		exists, stored, err := m.store.CheckAndSet(r.Context(), key, nil, m.ttl)
		if err != nil {
			log.Error().Err(err).Str("idempotency_key", header).Msg("idempotency check failed")
			writeJSONError(w, http.StatusInternalServerError, "idempotency check failed")
			return
		}
		if exists {
			replay(w, stored, fingerprint)
			return
		}

		// A panicking handler must not leave the key claimed until it expires.
		defer func() {
			if rec := recover(); rec != nil {
				m.release(context.WithoutCancel(r.Context()), key, header)
				panic(rec)
			}
		}()

		var body bytes.Buffer
		tee := &limitedWriter{w: &body, remaining: maxRecordedBody}
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Tee(tee)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if status < 200 || status >= 300 {
			m.release(r.Context(), key, header)
			return
		}

		record := storedResponse{Status: status, Fingerprint: fingerprint}
		switch {
		case tee.truncated:
			log.Warn().Str("idempotency_key", header).Msg("response too large to replay, storing status only")
		case body.Len() > 0:
			record.Body = body.Bytes()
		}
		payload, err := json.Marshal(record)
		if err == nil {
			err = m.store.Update(r.Context(), key, payload, m.ttl)
		}
		if err != nil {
			log.Warn().Err(err).Str("idempotency_key", header).Msg("failed to store idempotent response")
		}
	})
}

func (m *IdempotencyMiddleware) release(ctx context.Context, key, header string) {
	if err := m.store.Release(ctx, key); err != nil {
		log.Warn().Err(err).Str("idempotency_key", header).Msg("failed to release idempotency key")
	}
}

func replay(w http.ResponseWriter, stored []byte, fingerprint string) {
	if len(stored) == 0 || string(stored) == processingMarker {
		writeJSONError(w, http.StatusConflict, "a request with this idempotency key is still in progress")
		return
	}

	var record storedResponse
	if err := json.Unmarshal(stored, &record); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "corrupt idempotent response")
		return
	}
	if record.Fingerprint != "" && record.Fingerprint != fingerprint {
		writeJSONError(w, http.StatusUnprocessableEntity, "idempotency key reused with a different request body")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(IdempotencyReplayHeader, "true")
	w.WriteHeader(record.Status)
	if len(record.Body) > 0 && string(record.Body) != "null" {
		_, _ = w.Write(record.Body)
	}
}

func scopedKey(r *http.Request, header string) string {
	return domain.ActorID(r.Context()) + ":" + r.Method + ":" + r.URL.Path + ":" + header
}

// fingerprintBody hashes the request body and puts it back for the handler.
func fingerprintBody(r *http.Request) (string, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return "", nil
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRecordedBody+1))
	if err != nil {
		return "", err
	}
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))

	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// limitedWriter keeps at most remaining bytes and drops the rest.
type limitedWriter struct {
	w         io.Writer
	remaining int
	truncated bool
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	if l.remaining <= 0 {
		l.truncated = l.truncated || n > 0
		return n, nil
	}
	if len(p) > l.remaining {
		p = p[:l.remaining]
		l.truncated = true
	}
	l.remaining -= len(p)
	if _, err := l.w.Write(p); err != nil {
		return 0, err
	}
	return n, nil
}
