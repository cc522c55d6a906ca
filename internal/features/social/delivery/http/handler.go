package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"whitelist-tool-backend/internal/common/config"
	apperrors "whitelist-tool-backend/internal/common/errors"
	"whitelist-tool-backend/internal/common/middleware"
	socialservice "whitelist-tool-backend/internal/features/social/service"
)

// SessionCookie carries the verified Discord username as a signed JWT.
const SessionCookie = "discord_session"

type SocialHandler struct {
	service socialservice.SocialService
	cfg     *config.Config
}

func NewSocialHandler(service socialservice.SocialService, cfg *config.Config) *SocialHandler {
	return &SocialHandler{service: service, cfg: cfg}
}

func (h *SocialHandler) RegisterRoutes(router *gin.RouterGroup) {
	social := router.Group("/social")
	{
		social.GET("/status", h.getStatus)
		social.POST("/follow/start", h.startFollow)
		social.GET("/follow/status", h.getFollowStatus)
	}

	auth := router.Group("/auth")
	{
		auth.GET("/discord", h.beginDiscordAuth)
		auth.GET("/discord/callback", h.discordCallback)
	}
}

type followRequest struct {
	Address string `json:"address" binding:"required"`
}

// @Summary Start the follow gate for a wallet
// @Tags social
// @Accept json
// @Produce json
// @Success 200 {object} models.FollowStatus
// @Router /social/follow/start [post]
func (h *SocialHandler) startFollow(c *gin.Context) {
	var input followRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := h.service.StartFollow(c.Request.Context(), input.Address)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// @Summary Get the follow gate state for a wallet
// @Tags social
// @Produce json
// @Success 200 {object} models.FollowStatus
// @Router /social/follow/status [get]
func (h *SocialHandler) getFollowStatus(c *gin.Context) {
	status, err := h.service.GetFollowStatus(c.Request.Context(), c.Query("address"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// @Summary Get both social gate states for a wallet
// @Tags social
// @Produce json
// @Success 200 {object} models.SocialStatus
// @Router /social/status [get]
func (h *SocialHandler) getStatus(c *gin.Context) {
	session, _ := c.Cookie(SessionCookie)

	status, err := h.service.Status(c.Request.Context(), c.Query("address"), session)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// @Summary Redirect to the Discord authorization page
// @Tags social
// @Success 307
// @Router /auth/discord [get]
func (h *SocialHandler) beginDiscordAuth(c *gin.Context) {
	redirectURL, err := h.service.BeginDiscordAuth(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, redirectURL)
}

// @Summary Discord OAuth callback
// @Description Verifies required-server membership and sets the session cookie.
// @Tags social
// @Success 307
// @Failure 403 {object} middleware.ErrorResponse
// @Router /auth/discord/callback [get]
func (h *SocialHandler) discordCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" {
		middleware.AbortWithError(c, apperrors.New(apperrors.ErrCodeValidation, "Code is required"))
		return
	}

	username, err := h.service.CompleteDiscordAuth(c.Request.Context(), code, state)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	token, err := h.service.IssueSession(username)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	// Plain HTTP is a local-development concession only.
	secure := !h.cfg.Debug
	maxAge := int(h.cfg.Session.TTL.Seconds())
	c.SetCookie(SessionCookie, token, maxAge, "/", "", secure, true)
	c.Redirect(http.StatusTemporaryRedirect, h.cfg.Server.Origin+"/")
}
