package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

func (h *Handler) readyz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ready")
}

// loginPage is the unauthenticated entry point that redirect-mode guard
// denials land on. Rendering itself lives outside this service.
func (h *Handler) loginPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte("<!doctype html><title>Sign in</title><h1>Sign in</h1>"))
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, loginPath, http.StatusSeeOther)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"user_id": user.UserID,
		"name":    user.Name,
		"role":    user.Role,
	})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"user_id":       user.UserID,
		"business_id":   user.BusinessID,
		"email":         user.Email,
		"name":          user.Name,
		"role":          user.Role,
		"totp_enrolled": user.TOTPEnrolled(),
	})
}

func (h *Handler) listAudit(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	entries, err := h.service.ListAuditEntries(r.Context(), user.BusinessID, limit, offset)
	if err != nil {
		writeMappedError(w, r, "list_audit", err)
		return
	}
	writeData(w, http.StatusOK, entries)
}

func (h *Handler) deactivateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}
	userID, err := uuid.Parse(chi.URLParam(r, "user_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid user id")
		return
	}
	if err := h.service.DeactivateUser(r.Context(), actor, userID); err != nil {
		writeMappedError(w, r, "deactivate_user", err)
		return
	}
	writeMessage(w, http.StatusOK, "user deactivated")
}
