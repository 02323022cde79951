package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ims-platform/backoffice-service/pkg/errors"
	"github.com/ims-platform/backoffice-service/pkg/logging"
)

// APIErrorResponse is the JSON shape of every error returned by the API
type APIErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
	Timestamp string            `json:"timestamp"`
	Path      string            `json:"path,omitempty"`
}

// ErrorHandler converts errors attached to the Gin context into API
// responses. Register it last so it runs after every handler.
func ErrorHandler(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		appErr := apperrors.FromError(err)

		logError(logger, c, appErr)

		if c.Writer.Written() {
			return
		}

		c.JSON(appErr.HTTPStatus, newErrorResponse(c, appErr))
	}
}

// ErrorResponder writes an AppError response immediately. Handlers use it
// when they want to respond and stop processing in one call.
func ErrorResponder(logger *logging.Logger) func(c *gin.Context, err error) {
	return func(c *gin.Context, err error) {
		appErr := apperrors.FromError(err)
		logError(logger, c, appErr)
		c.AbortWithStatusJSON(appErr.HTTPStatus, newErrorResponse(c, appErr))
	}
}

// AbortWithError attaches an error to the context for the ErrorHandler
// middleware to render
func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// AbortWithAppError responds with the AppError immediately
func AbortWithAppError(c *gin.Context, appErr *apperrors.AppError) {
	c.AbortWithStatusJSON(appErr.HTTPStatus, newErrorResponse(c, appErr))
}

func newErrorResponse(c *gin.Context, appErr *apperrors.AppError) APIErrorResponse {
	return APIErrorResponse{
		Code:      appErr.Code,
		Message:   appErr.Message,
		Details:   appErr.Details,
		RequestID: GetRequestID(c),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func logError(logger *logging.Logger, c *gin.Context, appErr *apperrors.AppError) {
	attrs := []any{
		"code", appErr.Code,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"requestId", GetRequestID(c),
		"correlationId", GetCorrelationID(c),
	}
	if appErr.Err != nil {
		attrs = append(attrs, "error", appErr.Err.Error())
	}

	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.Error(appErr.Message, attrs...)
	} else {
		logger.Warn(appErr.Message, attrs...)
	}
}
