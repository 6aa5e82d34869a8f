package http

import (
	"encoding/json"
	"net/http"
)

// Every JSON body has one of two shapes: payloads under "data", failures
// under "error" with a machine-readable code the frontend switches on.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, map[string]any{"data": data})
}

func writeMessage(w http.ResponseWriter, statusCode int, message string) {
	writeData(w, statusCode, map[string]string{"message": message})
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, map[string]any{"error": errorBody{Code: code, Message: message}})
}
