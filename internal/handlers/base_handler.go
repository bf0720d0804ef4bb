package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/catalyst/backend/internal/apperrors"
	"github.com/catalyst/backend/internal/middlewares"
	"github.com/catalyst/backend/internal/response"
	"go.uber.org/zap"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondSuccess sends a success envelope
func (h *BaseHandler) RespondSuccess(w http.ResponseWriter, status int, message string, data any) {
	if err := response.Success(w, status, message, data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error envelope
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string, errs any) {
	if err := response.Error(w, status, message, errs); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondAppError translates a service error into the error envelope.
// Internal and upstream causes are logged and never shown to the client.
func (h *BaseHandler) RespondAppError(w http.ResponseWriter, r *http.Request, err error) {
	switch apperrors.KindOf(err) {
	case apperrors.KindInternal:
		h.Logger.Error("request failed",
			zap.Error(err),
			zap.String("request_id", middlewares.GetRequestID(r.Context())),
		)
	case apperrors.KindUpstream:
		h.Logger.Warn("upstream call failed",
			zap.Error(err),
			zap.String("request_id", middlewares.GetRequestID(r.Context())),
		)
	}

	if err := response.AppError(w, err); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// NotFound answers requests that match no route
func NotFound(w http.ResponseWriter, r *http.Request) {
	response.AppError(w, apperrors.NotFound("Resource not found"))
}

// decodeJSON decodes the request body into dst
func (h *BaseHandler) decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.Validation("No data provided")
		}
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return apperrors.Validation("Request body too large")
		}
		return errInvalidBody()
	}
	return nil
}

func errInvalidBody() error {
	return apperrors.Validation("Invalid request body")
}
