package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"whitelist-tool-backend/internal/common/middleware"
	"whitelist-tool-backend/internal/features/campaign/models"
	campaignservice "whitelist-tool-backend/internal/features/campaign/service"
	whitelistservice "whitelist-tool-backend/internal/features/whitelist/service"
)

type CampaignHandler struct {
	service   campaignservice.CampaignService
	whitelist whitelistservice.WhitelistService
}

func NewCampaignHandler(service campaignservice.CampaignService, whitelist whitelistservice.WhitelistService) *CampaignHandler {
	return &CampaignHandler{service: service, whitelist: whitelist}
}

func (h *CampaignHandler) RegisterRoutes(router *gin.RouterGroup) {
	campaign := router.Group("/campaign")
	{
		campaign.GET("", h.getCampaign)
		campaign.GET("/status", h.getStatus)
	}
}

// @Summary Get campaign description
// @Tags campaign
// @Produce json
// @Success 200 {object} models.CampaignResponse
// @Router /campaign [get]
func (h *CampaignHandler) getCampaign(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ToResponse())
}

// @Summary Get registration window status and countdown
// @Tags campaign
// @Produce json
// @Success 200 {object} models.StatusResponse
// @Router /campaign/status [get]
func (h *CampaignHandler) getStatus(c *gin.Context) {
	now := time.Now()

	wlStatus, err := h.whitelist.Status(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{
		Phase:               h.service.Phase(now),
		Open:                h.service.IsOpen(now),
		Countdown:           h.service.Countdown(now),
		EntryCount:          wlStatus.EntryCount,
		Limit:               wlStatus.Limit,
		Unlimited:           wlStatus.Unlimited,
		LimitReached:        wlStatus.LimitReached,
		CountdownRefreshSec: campaignservice.CountdownRefreshSec,
		PhaseRefreshSec:     campaignservice.PhaseRefreshSec,
	})
}
