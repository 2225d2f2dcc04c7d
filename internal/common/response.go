package common

import (
	"encoding/json"
	"log"
	"net/http"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Message: message})
}

// RespondWithServiceError writes err using its mapped status and safe message.
// Server-side failures are logged with their full chain.
func RespondWithServiceError(w http.ResponseWriter, err error, fallback string) {
	status := HTTPStatusFromError(err)
	if status >= http.StatusInternalServerError {
		log.Printf("ERROR: %s: %v", fallback, err)
	}
	RespondWithError(w, status, MessageFromError(err, fallback))
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
