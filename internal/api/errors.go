package api

import (
	stderrors "errors"
	"net/http"

	"goeda/domain/core"
	"goeda/internal/errors"

	"github.com/gin-gonic/gin"
)

// statusFor maps an error onto an HTTP status and a public error code.
// Domain sentinels win over AppError codes.
func statusFor(err error) (int, string) {
	switch {
	case core.IsNotFoundError(err):
		return http.StatusNotFound, errors.CodeNotFound
	case stderrors.Is(err, core.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, errors.CodeUnsupportedFormat
	case stderrors.Is(err, core.ErrEmptyDataset):
		return http.StatusBadRequest, errors.CodeEmptyDataset
	case core.IsInputError(err):
		return http.StatusBadRequest, errors.CodeInvalidInput
	case core.IsStateError(err):
		return http.StatusConflict, errors.CodeConflict
	}

	switch code := errors.GetCode(err); code {
	case errors.CodeNotFound:
		return http.StatusNotFound, code
	case errors.CodeUnsupportedFormat:
		return http.StatusUnsupportedMediaType, code
	case errors.CodeInvalidInput, errors.CodeValidationError, errors.CodeEmptyDataset:
		return http.StatusBadRequest, code
	case errors.CodeConflict:
		return http.StatusConflict, code
	}
	return http.StatusInternalServerError, errors.CodeInternalError
}

// respondError writes the error body. Internal failures are logged by the
// request logger and reported without their cause.
func respondError(c *gin.Context, err error) {
	status, code := statusFor(err)
	_ = c.Error(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message, "code": code})
}

// badRequest reports malformed request input
func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": message, "code": errors.CodeInvalidInput})
}
