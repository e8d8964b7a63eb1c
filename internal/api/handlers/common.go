package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nebari-dev/registrar/internal/models"
	"github.com/nebari-dev/registrar/internal/service"
)

// Response statuses used in every JSON body.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
)

// InternalErrorMessage is reported for any failure without a specific message.
const InternalErrorMessage = "Internal server error."

// MessageResponse is the body of ping, create and every failure.
type MessageResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message" example:"pong!"`
}

// RecordResponse wraps a single record.
type RecordResponse struct {
	Status string        `json:"status" example:"success"`
	Data   models.Record `json:"data"`
}

// ListResponse wraps every record of a kind under its plural name.
type ListResponse struct {
	Status string                     `json:"status" example:"success"`
	Data   map[string][]models.Record `json:"data"`
}

// ErrorResponse is the body of the ambient endpoints' failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

func success(c *gin.Context, code int, message string) {
	c.JSON(code, MessageResponse{Status: StatusSuccess, Message: message})
}

func fail(c *gin.Context, code int, message string) {
	c.JSON(code, MessageResponse{Status: StatusFail, Message: message})
}

// statusFor maps a service-layer error to its HTTP status and message.
// Duplicates are reported as 400, not 409, to keep the published contract.
func statusFor(kind models.Kind, err error) (int, string) {
	if errors.Is(err, service.ErrNotFound) {
		return http.StatusNotFound, service.NotFoundMessage(kind)
	}
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, validationErr.Message
	}
	var conflictErr *service.ConflictError
	if errors.As(err, &conflictErr) {
		return http.StatusBadRequest, conflictErr.Message
	}
	return http.StatusInternalServerError, InternalErrorMessage
}

// handleServiceError maps service-layer errors to JSON failure responses.
func handleServiceError(c *gin.Context, kind models.Kind, err error) {
	code, message := statusFor(kind, err)
	if code == http.StatusInternalServerError {
		slog.Error("unhandled service error", "kind", kind.Plural, "path", c.FullPath(), "error", err)
	}
	fail(c, code, message)
}
