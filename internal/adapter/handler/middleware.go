package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/rl1809/rental-booking/internal/auth"
	"github.com/rl1809/rental-booking/internal/core/domain"
	"github.com/rl1809/rental-booking/internal/metrics"
)

type ctxKey int

const claimsKey ctxKey = iota

func claimsFrom(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok
}

// requestLogger writes one line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		entry := log.WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"request_id": middleware.GetReqID(r.Context()),
		})
		if status >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Info("request")
	})
}

// authenticate requires a valid bearer token and stores its claims on the context.
func (h *HTTPHandler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := auth.ParseAuth(r.Header.Get("Authorization"), h.opts.JWTSecret)
		if err != nil {
			h.writeError(w, r, &domain.Error{Kind: domain.KindUnauthorized, Message: "authentication required", Err: err})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

// optionalAuth attaches claims when a valid token is present and ignores it otherwise.
func (h *HTTPHandler) optionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if header := r.Header.Get("Authorization"); header != "" {
			if claims, err := auth.ParseAuth(header, h.opts.JWTSecret); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), claimsKey, claims))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (h *HTTPHandler) requireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := claimsFrom(r.Context())
			if !ok {
				h.writeError(w, r, &domain.Error{Kind: domain.KindUnauthorized, Message: "authentication required"})
				return
			}
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			h.writeError(w, r, &domain.Error{Kind: domain.KindForbidden, Message: "role " + claims.Role + " may not perform this action"})
		})
	}
}

// rateLimit counts booking attempts per subject. It fails open when the cache is down.
func (h *HTTPHandler) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r.Context())
		if !ok || h.opts.RateLimit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		allowed, err := h.cache.Allow(r.Context(), "bookings:"+claims.Subject, h.opts.RateLimit, h.opts.RateWindow)
		if err != nil {
			log.WithField("subject", claims.Subject).WithError(err).Warn("rate limiter unavailable, allowing request")
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			metrics.RateLimited.Inc()
			h.writeError(w, r, &domain.Error{Kind: domain.KindRateLimited, Message: "too many booking attempts, slow down"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
