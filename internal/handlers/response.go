package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mocktest-service/internal/apierr"
	"mocktest-service/internal/exam"
	"mocktest-service/internal/ratelimit"
	"mocktest-service/internal/service"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func SuccessResponse(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, statusCode int, message string, err error) {
	response := APIResponse{
		Success: false,
		Message: message,
	}
	if err != nil {
		response.Error = err.Error()
	}
	c.JSON(statusCode, response)
}

func BadRequestResponse(c *gin.Context, message string, err error) {
	ErrorResponse(c, http.StatusBadRequest, message, err)
}

var errorMappings = []apierr.Mapping{
	{Target: exam.ErrInvalidInput, Status: http.StatusBadRequest, Code: "INVALID_INPUT"},
	{Target: exam.ErrInvalidState, Status: http.StatusConflict, Code: "INVALID_STATE"},
	{Target: service.ErrAttemptNotFound, Status: http.StatusNotFound, Code: "ATTEMPT_NOT_FOUND"},
	{Target: ratelimit.ErrLimited, Status: http.StatusTooManyRequests, Code: "RATE_LIMITED"},
}

// respondError maps core errors to their HTTP status and records them on the context.
func respondError(c *gin.Context, err error) {
	apiErr := apierr.From(err, errorMappings...)
	_ = c.Error(err)
	ErrorResponse(c, apiErr.Status, apiErr.Code, err)
}
