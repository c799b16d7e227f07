package response

import (
	"net/http"

	"app-builder-api/internal/apperrors"
	"app-builder-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a failed API response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Fail sends an error JSON response
func Fail(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ErrorResponse{
		Success: false,
		Error:   message,
	})
}

// FromError maps err to its status code and a client safe message. Server
// side failures are logged with full detail.
func FromError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logging.Errorf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	Fail(c, status, apperrors.PublicMessage(err))
}
