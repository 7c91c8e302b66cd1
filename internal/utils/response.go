package utils

import (
	"encoding/json"
	"net/http"

	"github.com/brizzai/realtor-cli/internal/logger"
	"go.uber.org/zap"
)

// WriteJSON writes data as a JSON response with the given status
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// WriteError writes a JSON error body in the backend's {"error": "..."} shape
func WriteError(w http.ResponseWriter, message string, status int) {
	WriteJSON(w, status, map[string]string{"error": message})
}
