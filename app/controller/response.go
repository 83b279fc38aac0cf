package controller

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"wordmark/export"
	"wordmark/history"
	"wordmark/models"
	"wordmark/service"
)

// maxBodyBytes caps JSON request bodies; imported history documents are the largest
const maxBodyBytes = 8 << 20

// writeJSON encodes body with status
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("❌ Failed to encode response: %v", err)
	}
}

// decodeJSON reads a JSON request body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrFavoriteNotFound),
		errors.Is(err, service.ErrArchiveNotFound):
		return http.StatusNotFound
	case errors.Is(err, history.ErrIndexOutOfRange),
		errors.Is(err, history.ErrInvalidDocument),
		errors.Is(err, export.ErrUnknownPreset),
		errors.Is(err, export.ErrNoJobs),
		errors.Is(err, models.ErrUnsupportedFormat),
		errors.Is(err, service.ErrInvalidDesign):
		return http.StatusBadRequest
	case errors.Is(err, history.ErrFavoritesFull):
		return http.StatusConflict
	case errors.Is(err, service.ErrDriveDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError logs err under op and answers with the mapped status
func writeError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("❌ %s: %v", op, err)
	} else {
		log.Printf("⚠️  %s: %v", op, err)
	}
	http.Error(w, err.Error(), status)
}
