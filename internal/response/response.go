// Package response writes the JSON envelope every endpoint answers with.
//
// Success: {"success": true, "message": "...", "data": {...}}
// Error:   {"success": false, "message": "...", "errors": {...}}
package response

import (
	"encoding/json"
	"net/http"

	"github.com/catalyst/backend/internal/apperrors"
)

// SuccessBody is the envelope of a successful response
type SuccessBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ErrorBody is the envelope of a failed response
type ErrorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Errors  any    `json:"errors"`
}

// JSON encodes body with the given status code
func JSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}

// Success writes a success envelope. A zero status means 200, nil data an empty object.
func Success(w http.ResponseWriter, status int, message string, data any) error {
	if status == 0 {
		status = http.StatusOK
	}
	if data == nil {
		data = struct{}{}
	}
	return JSON(w, status, SuccessBody{Success: true, Message: message, Data: data})
}

// Error writes an error envelope. A zero status means 400, nil errors an empty object.
func Error(w http.ResponseWriter, status int, message string, errs any) error {
	if status == 0 {
		status = http.StatusBadRequest
	}
	if errs == nil {
		errs = struct{}{}
	}
	return JSON(w, status, ErrorBody{Success: false, Message: message, Errors: errs})
}

// AppError writes the error envelope for a classified error: the kind decides the status,
// Fields become the errors object. Internal and unclassified errors answer a generic 500.
func AppError(w http.ResponseWriter, err error) error {
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Kind == apperrors.KindInternal {
		return Error(w, http.StatusInternalServerError, "Internal server error", nil)
	}

	var errs any
	if len(appErr.Fields) > 0 {
		errs = appErr.Fields
	}
	return Error(w, appErr.Kind.Status(), appErr.Message, errs)
}
