package config

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/saulo-duarte/appraisal-lambda/internal/apperror"
)

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		Logger.WithError(err).Error("Failed to encode response")
	}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Error writes err using the apperror kind to pick the status code. Errors
// outside the taxonomy are reported as a generic internal error.
func Error(w http.ResponseWriter, err error) {
	status := apperror.HTTPStatus(err)
	resp := ErrorResponse{Error: string(apperror.KindOf(err)), Message: "internal server error"}

	if status != http.StatusInternalServerError {
		resp.Message = err.Error()
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			resp.Field = appErr.Field
		}
	}

	JSON(w, status, resp)
}
