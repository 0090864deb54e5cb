/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package handlers

import (
	"net/http"

	"trokazz-server/internal/auth"
	"trokazz-server/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// RouterOptions carries the cross-cutting pieces the router wires in.
type RouterOptions struct {
	AuthManager    *auth.Manager
	RateLimiter    *redis.Client
	RequestsPerMin int64
	AllowedOrigin  string
}

// SetupRouter builds the full route table.
func (h *Handler) SetupRouter(opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS(opts.AllowedOrigin))
	router.Use(middleware.RateLimit(opts.RateLimiter, opts.RequestsPerMin))

	router.GET("/healthz", func(c *gin.Context) {
		if err := h.service.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")

	// Public surface. Ad detail resolves the viewer when a token is present
	// so owners can see their own pending ads.
	v1.POST("/auth/register", h.Register)
	v1.POST("/auth/login", h.Login)
	v1.GET("/ads", h.ListAds)
	v1.GET("/ads/:id", middleware.OptionalAuth(opts.AuthManager), h.GetAd)
	v1.GET("/users/:id", h.GetPublicProfile)

	// Authenticated surface.
	authed := v1.Group("", middleware.Auth(opts.AuthManager))
	{
		authed.POST("/ads", h.CreateAd)
		authed.PUT("/ads/:id", h.UpdateAd)
		authed.GET("/my/ads", h.ListMyAds)
		authed.POST("/ads/:id/boost", h.BoostAd)
		authed.POST("/ads/:id/renew", h.RenewAd)
		authed.POST("/ads/:id/pause", h.PauseAd)
		authed.POST("/ads/:id/relist", h.RelistAd)
		authed.POST("/ads/:id/sold", h.MarkSold)
		authed.POST("/ads/:id/report", h.ReportAd)

		authed.GET("/credits/balance", h.GetBalance)
		authed.GET("/credits/history", h.GetLedgerHistory)
		authed.POST("/credits/purchase", h.PurchaseCredits)
		authed.POST("/credits/redeem", h.RedeemPromoCode)

		authed.GET("/profile", h.GetProfile)
		authed.POST("/profile/verification", h.RequestVerification)

		authed.GET("/notifications", h.ListNotifications)
		authed.GET("/notifications/unread", h.CountUnreadNotifications)
		authed.POST("/notifications/:id/read", h.MarkNotificationRead)
		authed.POST("/notifications/read-all", h.MarkAllNotificationsRead)
		authed.GET("/notifications/stream", h.NotificationStream)
	}

	// Admin surface.
	admin := v1.Group("/admin", middleware.Auth(opts.AuthManager), middleware.RequireAdmin())
	{
		admin.GET("/moderation/queue", h.GetModerationQueue)
		admin.POST("/moderation/resolve", h.ResolveModerationItem)
		admin.POST("/credits/grant", h.GrantCredits)
	}

	return router
}
