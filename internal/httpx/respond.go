// Package httpx renders JSON bodies and maps domain errors onto responses.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/ayush/personal-library/internal/apperr"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

// MessageResponse is the body of every non-data response.
type MessageResponse struct {
	Message string              `json:"message"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteMessage writes {"message": msg}.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, MessageResponse{Message: msg})
}

// WriteError translates err into a status and body. Unclassified and
// configuration failures are logged with their cause and answered with a
// generic message.
func WriteError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	code := apperr.CodeOf(err)
	status := code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("code", string(code)),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	}
	WriteJSON(w, status, MessageResponse{
		Message: apperr.PublicMessage(err),
		Errors:  apperr.FieldsOf(err),
	})
}

// DecodeJSON reads a single JSON object from the request body. Unknown
// fields are ignored.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation(apperr.FieldError{Field: "body", Message: "Request body is required"})
		}
		return apperr.Validation(apperr.FieldError{Field: "body", Message: "Invalid request body"})
	}
	return nil
}
