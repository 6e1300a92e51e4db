package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// WriteJSON serializes data to JSON and writes it with statusCode and a
// "Content-Type: application/json" header.
//
// If marshaling fails, it responds with 500 Internal Server Error and returns
// a wrapped error.
//
// Example usage:
//
//	WriteJSON(w, models.CreateDocumentResponse{ID: id}, http.StatusCreated)
func WriteJSON(w http.ResponseWriter, data any, statusCode int) (int, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "error writing data to JSON", http.StatusInternalServerError)
		return 0, fmt.Errorf("error writing data to JSON: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	return w.Write(jsonData)
}

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteError writes {"error": msg} with statusCode.
func WriteError(w http.ResponseWriter, msg string, statusCode int) {
	_, _ = WriteJSON(w, ErrorResponse{Error: msg}, statusCode)
}
