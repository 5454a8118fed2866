package http

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/gin-gonic/gin"
)

const (
	msgUserExists   = "User already exists"
	msgBadLogin     = "Invalid email or password"
	msgNoteNotFound = "Note not found or unauthorized"
	msgAIFailed     = "AI processing failed"
)

// fail translates a service error into the API's error shape. fallback is
// the body for unexpected errors, which are also logged.
func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	var ve *common.ValidationError

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, errorResponse{Error: ve.Message})
	case errors.Is(err, common.ErrorAlreadyExists):
		c.JSON(http.StatusBadRequest, errorResponse{Error: msgUserExists})
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, errorResponse{Error: msgNotAuthorized})
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: msgNoteNotFound})
	case errors.Is(err, common.ErrUpstreamUnavailable):
		h.log(c).Warn(c.Request.Context(), "AI gateway unavailable", "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: msgAIFailed})
	default:
		h.log(c).Error(c.Request.Context(), fallback, "error", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: fallback})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}
