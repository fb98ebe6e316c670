package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/decisio-ai/decisio/internal/auth"
)

type contextKey string

const (
	accountContextKey   contextKey = "account"
	requestIDContextKey contextKey = "request_id"
)

// accountFromContext returns the authenticated account set by withAuth.
func accountFromContext(ctx context.Context) (auth.Account, bool) {
	acct, ok := ctx.Value(accountContextKey).(auth.Account)
	return acct, ok
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

// withRecover converts transport-level panics into a 500. Pipeline faults
// never reach here; the pipeline traps its own.
func (s *Server) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panic")
				writeError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred.")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withRequestLog assigns a request ID and logs one access line per request.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDContextKey, id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		s.log.Info().
			Str("request_id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withCORS applies the configured allowed origins and answers preflights.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-API-Key")
			w.Header().Set("Access-Control-Max-Age", "600")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	for _, allowed := range s.cfg.Server.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// withAuth resolves the presented API key to an account. Keys arrive as
// "Authorization: Bearer <key>" or in the X-API-Key header.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := bearerToken(r)
		if key == "" {
			key = strings.TrimSpace(r.Header.Get("X-API-Key"))
		}
		if key == "" {
			writeError(w, http.StatusUnauthorized, "missing_api_key", "Provide an API key via Authorization: Bearer or X-API-Key.")
			return
		}

		acct, ok := s.auth.Lookup(key)
		if !ok {
			writeError(w, http.StatusForbidden, "invalid_api_key", "API key is not recognized.")
			return
		}

		ctx := context.WithValue(r.Context(), accountContextKey, acct)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// withRateLimit checks the account's tier quota and sets the standard
// X-RateLimit-* headers on every response.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acct, ok := accountFromContext(r.Context())
		if !ok {
			// withAuth always runs first; reaching here is a wiring bug.
			writeError(w, http.StatusInternalServerError, "internal_error", "account missing from request context")
			return
		}

		res, err := s.limiter.Allow(r.Context(), acct.ID, acct.Tier)
		if err != nil {
			s.log.Warn().Err(err).Str("account", acct.ID).Msg("rate limiter error")
		}

		h := w.Header()
		h.Set("X-RateLimit-Limit-Minute", strconv.Itoa(res.LimitMinute))
		h.Set("X-RateLimit-Remaining-Minute", strconv.Itoa(res.RemainingMinute))
		h.Set("X-RateLimit-Limit-Day", strconv.Itoa(res.LimitDay))
		h.Set("X-RateLimit-Remaining-Day", strconv.Itoa(res.RemainingDay))

		if !res.Allowed {
			s.metrics.RecordRateLimitReject(string(acct.Tier), res.Window)
			retryAfter := int(res.RetryAfter.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			h.Set("Retry-After", strconv.Itoa(retryAfter))
			writeError(w, http.StatusTooManyRequests, "rate_limited", "Rate limit exceeded for the "+res.Window+" window.")
			return
		}

		next.ServeHTTP(w, r)
	})
}
