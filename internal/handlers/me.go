package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amitsuman46/video-progress-tracker/internal/auth"
	"github.com/amitsuman46/video-progress-tracker/internal/middleware"
	apperrors "github.com/amitsuman46/video-progress-tracker/pkg/errors"
)

type MeHandler struct {
	allowlist *auth.Allowlist
}

func NewMeHandler(allowlist *auth.Allowlist) *MeHandler {
	return &MeHandler{allowlist: allowlist}
}

// GetMe returns the verified identity of the caller
func (h *MeHandler) GetMe(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.Error(apperrors.ErrUnauthorized)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"uid":     user.UID,
		"email":   user.Email,
		"isAdmin": h.allowlist.IsAdmin(user),
	})
}
