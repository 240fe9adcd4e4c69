package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akramsystems/llm-n-class-classifier/internal/adapter/client"
	"github.com/akramsystems/llm-n-class-classifier/internal/usecase"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	StatusCode int
	Code       string
	Message    string
}

// MapUsecaseError maps usecase and completion errors to HTTP error responses.
// Every remote failure is a server error; none are retried here.
func MapUsecaseError(err error) ErrorResponse {
	switch {
	case errors.Is(err, usecase.ErrInvalidRequest):
		return ErrorResponse{
			StatusCode: http.StatusUnprocessableEntity,
			Code:       "VALIDATION_ERROR",
			Message:    "invalid request",
		}
	case errors.Is(err, usecase.ErrClientNotConfigured):
		return ErrorResponse{
			StatusCode: http.StatusServiceUnavailable,
			Code:       "NOT_CONFIGURED",
			Message:    "completion provider not configured",
		}
	case client.IsRateLimited(err):
		return ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Code:       "UPSTREAM_ERROR",
			Message:    "completion provider rate limit exceeded",
		}
	case errors.Is(err, client.ErrSchemaConformance), errors.Is(err, client.ErrEmptyResponse):
		return ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Code:       "UPSTREAM_ERROR",
			Message:    "completion response did not match the declared schema",
		}
	default:
		return ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Code:       "INTERNAL_ERROR",
			Message:    "internal server error",
		}
	}
}

// HandleUsecaseError records err on the context for the access log and
// sends the mapped JSON error response.
func HandleUsecaseError(c *gin.Context, err error) {
	_ = c.Error(err)
	errResp := MapUsecaseError(err)
	respondError(c, errResp.StatusCode, errResp.Code, errResp.Message)
}

// HandleValidationError handles a request body that failed binding or validation
func HandleValidationError(c *gin.Context, err error) {
	respondError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", bindingMessage(err), fieldErrors(err)...)
}
