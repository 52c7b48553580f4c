package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies, imports included
const maxBodyBytes = 10 << 20

func respondJSON(logger *zap.Logger, w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}

func decodeJSON(r *http.Request, w http.ResponseWriter, target interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(target)
}
