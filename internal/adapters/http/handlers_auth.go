package http

import (
	"net/http"
	"time"

	"github.com/tillworks/pos/internal/application"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req application.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(w, r, "register", err)
		return
	}

	res, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeMappedError(w, r, "register", err)
		return
	}
	writeData(w, http.StatusCreated, res)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(w, r, "login", err)
		return
	}
	if req.IPAddress == "" {
		req.IPAddress = readIP(r)
	}

	res, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeMappedError(w, r, "login", err)
		return
	}
	if !res.RequiresTOTP {
		h.setSessionCookie(w, res.SessionToken, res.ExpiresAt)
	}
	writeData(w, http.StatusOK, res)
}

func (h *Handler) totpVerify(w http.ResponseWriter, r *http.Request) {
	var req application.TOTPLoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(w, r, "totp_verify", err)
		return
	}
	if req.IPAddress == "" {
		req.IPAddress = readIP(r)
	}

	res, err := h.service.CompleteTOTPLogin(r.Context(), req)
	if err != nil {
		writeMappedError(w, r, "totp_verify", err)
		return
	}
	h.setSessionCookie(w, res.SessionToken, res.ExpiresAt)
	writeData(w, http.StatusOK, res)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), tokenFromContext(r.Context())); err != nil {
		writeMappedError(w, r, "logout", err)
		return
	}
	h.clearSessionCookie(w)
	writeMessage(w, http.StatusOK, "logged out")
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(w, r, "change_password", err)
		return
	}
	if err := h.service.ChangePassword(r.Context(), user, req.CurrentPassword, req.NewPassword); err != nil {
		writeMappedError(w, r, "change_password", err)
		return
	}
	writeMessage(w, http.StatusOK, "password changed")
}

func (h *Handler) totpSetup(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}
	res, err := h.service.BeginTOTPEnrollment(r.Context(), user)
	if err != nil {
		writeMappedError(w, r, "totp_setup", err)
		return
	}
	writeData(w, http.StatusOK, res)
}

func (h *Handler) totpConfirm(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}
	var req struct {
		Secret string `json:"secret"`
		Code   string `json:"code"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(w, r, "totp_confirm", err)
		return
	}
	if err := h.service.ConfirmTOTPEnrollment(r.Context(), user, req.Secret, req.Code); err != nil {
		writeMappedError(w, r, "totp_confirm", err)
		return
	}
	writeMessage(w, http.StatusOK, "two-factor enrolled")
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secureCookies,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secureCookies,
	})
}
