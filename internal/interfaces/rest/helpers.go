package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"daraja-gateway/internal/application"
)

// ErrorResponse carries the caller-safe message at the top level so clients
// can read it next to the success flag; Error duplicates it with the code
// for clients that want structured detail.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// WriteError maps application errors to HTTP responses. Only the
// ServiceError message crosses the boundary; the wrapped cause is logged.
func WriteError(w http.ResponseWriter, err error, logger *slog.Logger) {
	svcErr, ok := application.IsServiceError(err)
	if !ok {
		svcErr = application.NewInternalError(err)
	}

	if svcErr.HTTPStatus >= http.StatusInternalServerError {
		logger.Error("request failed", "code", svcErr.Code, "error", err)
	}

	WriteJSON(w, svcErr.HTTPStatus, ErrorResponse{
		Success: false,
		Message: svcErr.Message,
		Error: ErrorDetail{
			Code:    svcErr.Code,
			Message: svcErr.Message,
		},
	})
}
