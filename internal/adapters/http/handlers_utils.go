package http

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
)

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return err
	}
	return nil
}

// readIP prefers the first X-Forwarded-For hop when present; falls back to
// the socket peer.
func readIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeValidationError(w http.ResponseWriter, r *http.Request, handler string, err error) {
	logHandlerError(r.Context(), handler, http.StatusBadRequest, "VALIDATION_ERROR", err)
	writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
}

func writeMappedError(w http.ResponseWriter, r *http.Request, handler string, err error) {
	statusCode, code, message := mapDomainError(err)
	logHandlerError(r.Context(), handler, statusCode, code, err)
	writeError(w, statusCode, code, message)
}
