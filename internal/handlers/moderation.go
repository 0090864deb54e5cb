package handlers

import (
	"net/http"

	"trokazz-server/internal/api"
	"trokazz-server/internal/middleware"
	"trokazz-server/internal/models"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetModerationQueue(c *gin.Context) {
	queue, err := h.service.GetModerationQueue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, queue)
}

type resolveRequest struct {
	Kind   string `json:"kind" binding:"required"`
	ItemId string `json:"item_id" binding:"required"`
	Action string `json:"action" binding:"required"`
	Reason string `json:"reason"`
}

func (h *Handler) ResolveModerationItem(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.service.ResolveModerationItem(c.Request.Context(), api.ResolveParams{
		Kind:    models.ModerationItemKind(req.Kind),
		ItemId:  req.ItemId,
		Action:  models.ModerationAction(req.Action),
		Reason:  req.Reason,
		AdminId: middleware.UserId(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
