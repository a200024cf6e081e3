package ui

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"statflow/domain/core"
	apperrors "statflow/internal/errors"
)

// statusFor maps domain and application errors onto HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrUnknownKind),
		errors.Is(err, core.ErrInvalidSample),
		errors.Is(err, core.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNotReady):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrStaleResponse):
		return http.StatusConflict
	case core.IsWorkflowError(err):
		return http.StatusConflict
	}

	switch apperrors.GetCode(err) {
	case apperrors.CodeValidationError, apperrors.CodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeComputeRejected:
		return http.StatusUnprocessableEntity
	case apperrors.CodeExternalService, apperrors.CodeMalformedResponse, apperrors.CodeExportFailed:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondError writes the error body every handler uses
func (s *Server) respondError(c *gin.Context, err error, extra gin.H) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	body := gin.H{"error": apperrors.UserMessage(err)}
	if code := apperrors.GetCode(err); code != "UNKNOWN" {
		body["code"] = code
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message, "code": apperrors.CodeInvalidInput})
}
