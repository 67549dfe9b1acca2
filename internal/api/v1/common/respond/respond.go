package respond

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/open-prompts/awsome-prompt/internal/services"
	"github.com/open-prompts/awsome-prompt/internal/utils"
)

// Error maps a service error onto its HTTP status and writes the error
// envelope. Unrecognized errors become opaque 500s.
func Error(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		zap.S().Errorw("internal error", "path", c.Request.URL.Path, "error", err)
		message = "internal error"
	}

	c.JSON(status, utils.NewErrorResponse(status, message))
}
