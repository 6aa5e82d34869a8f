package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tillworks/pos/internal/application"
	"github.com/tillworks/pos/internal/domain"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "pos_session"

type ctxKey string

const (
	ctxKeyRequestID ctxKey = "request_id"
	ctxKeyToken     ctxKey = "session_token"
	ctxKeyUser      ctxKey = "auth_user"
)

// Authorizer is the slice of the application service the guard middleware
// needs. Narrowing it here keeps the middleware testable without full
// service wiring.
type Authorizer interface {
	RequireUser(ctx context.Context, token string) application.Decision
	RequireRole(ctx context.Context, token string, allowed ...domain.Role) application.Decision
}

// denialMode selects how a guard denial reaches the client: a redirect for
// server-rendered pages, a structured JSON error for API routes.
type denialMode int

const (
	denyRedirect denialMode = iota
	denyJSON
)

const (
	loginPath   = "/login"
	landingPath = "/dashboard"
)

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", reqID)
		ctx := context.WithValue(r.Context(), ctxKeyRequestID, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpLog(r.Context()).ErrorContext(r.Context(), "panic recovered",
					"method", r.Method,
					"path", r.URL.Path,
					"panic", rec,
				)
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(payload []byte) (int, error) {
	if r.statusCode == 0 {
		r.statusCode = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(payload)
	r.bytes += n
	return n, err
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(recorder, r)

		statusCode := recorder.statusCode
		if statusCode == 0 {
			statusCode = http.StatusOK
		}

		logger := httpLog(r.Context()).With(
			"method", r.Method,
			"path", r.URL.Path,
			"status", statusCode,
			"bytes", recorder.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		switch {
		case statusCode >= 500:
			logger.ErrorContext(r.Context(), "request served")
		case statusCode >= 400:
			logger.WarnContext(r.Context(), "request served")
		default:
			logger.InfoContext(r.Context(), "request served")
		}
	})
}

// sessionMiddleware lifts the session cookie into the request context.
// Absence is not an error; downstream guards decide what anonymity means.
func sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if cookie, err := r.Cookie(SessionCookieName); err == nil {
			token = cookie.Value
		}
		ctx := context.WithValue(r.Context(), ctxKeyToken, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// guardMiddleware gates a route on an allow-list of roles. With no roles
// listed it only requires an authenticated active user. Denials are
// translated per mode; handler code behind the guard never runs on denial.
func guardMiddleware(auth Authorizer, mode denialMode, roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromContext(r.Context())
			var decision application.Decision
			if len(roles) == 0 {
				decision = auth.RequireUser(r.Context(), token)
			} else {
				decision = auth.RequireRole(r.Context(), token, roles...)
			}
			if !decision.Allowed() {
				denyRequest(w, r, mode, decision.Reason)
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyUser, *decision.User)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func denyRequest(w http.ResponseWriter, r *http.Request, mode denialMode, reason application.DenyReason) {
	if mode == denyRedirect {
		target := loginPath
		if reason == application.DenyForbidden {
			target = landingPath
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	if reason == application.DenyForbidden {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "insufficient role")
		return
	}
	writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
}

func requestIDFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return s
	}
	return ""
}

func tokenFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(ctxKeyToken).(string); ok {
		return s
	}
	return ""
}

func userFromContext(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(ctxKeyUser).(domain.User)
	return user, ok
}

func mapDomainError(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "VALIDATION_ERROR", err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing credentials"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password"
	case errors.Is(err, domain.ErrAccountLocked):
		return http.StatusTooManyRequests, "ACCOUNT_LOCKED", "account temporarily locked"
	case errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized, "TOKEN_EXPIRED", "token expired"
	case errors.Is(err, domain.ErrTOTPNotConfigured):
		return http.StatusConflict, "TOTP_NOT_CONFIGURED", "two-factor is not configured"
	case errors.Is(err, domain.ErrTOTPAlreadyEnrolled):
		return http.StatusConflict, "TOTP_ALREADY_ENROLLED", "two-factor is already enrolled"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, "CONFLICT", err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
	}
}
