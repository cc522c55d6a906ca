package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "whitelist-tool-backend/internal/common/errors"
	"whitelist-tool-backend/internal/common/middleware"
	socialhttp "whitelist-tool-backend/internal/features/social/delivery/http"
	"whitelist-tool-backend/internal/features/whitelist/models"
	whitelistservice "whitelist-tool-backend/internal/features/whitelist/service"
	"whitelist-tool-backend/internal/platform/solana"
)

type WhitelistHandler struct {
	service whitelistservice.WhitelistService
}

func NewWhitelistHandler(service whitelistservice.WhitelistService) *WhitelistHandler {
	return &WhitelistHandler{service: service}
}

func (h *WhitelistHandler) RegisterRoutes(router *gin.RouterGroup) {
	whitelist := router.Group("/whitelist")
	{
		whitelist.GET("/status", h.getStatus)
		whitelist.GET("/eligibility", h.getEligibility)
		whitelist.POST("/entries", h.submit)
	}
}

// @Summary Get whitelist capacity
// @Tags whitelist
// @Produce json
// @Success 200 {object} models.StatusResponse
// @Router /whitelist/status [get]
func (h *WhitelistHandler) getStatus(c *gin.Context) {
	status, err := h.service.Status(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// @Summary Evaluate every submission gate for a wallet
// @Tags whitelist
// @Produce json
// @Param address query string true "Wallet public key (base58)"
// @Success 200 {object} models.Eligibility
// @Router /whitelist/eligibility [get]
func (h *WhitelistHandler) getEligibility(c *gin.Context) {
	address := c.Query("address")
	if address != "" && !solana.ValidateAddress(address) {
		middleware.AbortWithError(c, apperrors.New(apperrors.ErrCodeValidation, "Invalid wallet address"))
		return
	}

	session, _ := c.Cookie(socialhttp.SessionCookie)

	decision, err := h.service.Evaluate(c.Request.Context(), address, session)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, decision)
}

// @Summary Submit a whitelist entry
// @Tags whitelist
// @Accept json
// @Produce json
// @Param input body models.SubmitRequest true "Submission payload"
// @Success 201 {object} models.Entry
// @Failure 403 {object} middleware.ErrorResponse "A gate blocked the submission"
// @Failure 409 {object} middleware.ErrorResponse "Entry already exists"
// @Router /whitelist/entries [post]
func (h *WhitelistHandler) submit(c *gin.Context) {
	var input models.SubmitRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !solana.ValidateAddress(input.Address) {
		middleware.AbortWithError(c, apperrors.New(apperrors.ErrCodeValidation, "Invalid wallet address"))
		return
	}

	session, _ := c.Cookie(socialhttp.SessionCookie)

	entry, err := h.service.Submit(c.Request.Context(), input.Address, session)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}
