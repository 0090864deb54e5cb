package handlers

import (
	"context"
	"net/http"
	"strconv"

	"trokazz-server/internal/middleware"
	"trokazz-server/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type adRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Price       decimal.Decimal `json:"price"`
	Images      []string        `json:"images"`
}

func (h *Handler) CreateAd(c *gin.Context) {
	var req adRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ad, err := h.service.CreateAd(c.Request.Context(), store.CreateAdParams{
		UserId:      middleware.UserId(c),
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Images:      req.Images,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ad)
}

func (h *Handler) GetAd(c *gin.Context) {
	ad, err := h.service.GetAd(c.Request.Context(), c.Param("id"), middleware.UserId(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ad)
}

func (h *Handler) ListAds(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	ads, err := h.service.ListAds(c.Request.Context(), store.AdFilter{
		Query:  c.Query("q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ads)
}

func (h *Handler) ListMyAds(c *gin.Context) {
	ads, err := h.service.ListMyAds(c.Request.Context(), middleware.UserId(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ads)
}

func (h *Handler) UpdateAd(c *gin.Context) {
	var req adRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ad, err := h.service.UpdateAd(c.Request.Context(), store.UpdateAdParams{
		AdId:        c.Param("id"),
		UserId:      middleware.UserId(c),
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Images:      req.Images,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ad)
}

func (h *Handler) BoostAd(c *gin.Context) {
	result, err := h.service.BoostAd(c.Request.Context(), c.Param("id"), middleware.UserId(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) RenewAd(c *gin.Context) {
	ad, err := h.service.RenewAd(c.Request.Context(), c.Param("id"), middleware.UserId(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ad)
}

func (h *Handler) PauseAd(c *gin.Context) {
	h.ownerAction(c, h.service.PauseAd)
}

func (h *Handler) RelistAd(c *gin.Context) {
	h.ownerAction(c, h.service.RelistAd)
}

func (h *Handler) MarkSold(c *gin.Context) {
	h.ownerAction(c, h.service.MarkSold)
}

func (h *Handler) ownerAction(c *gin.Context, action func(ctx context.Context, adId, userId string) error) {
	if err := action(c.Request.Context(), c.Param("id"), middleware.UserId(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type reportRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (h *Handler) ReportAd(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.service.ReportAd(c.Request.Context(), c.Param("id"), middleware.UserId(c), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}
