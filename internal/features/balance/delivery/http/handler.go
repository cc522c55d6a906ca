package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "whitelist-tool-backend/internal/common/errors"
	"whitelist-tool-backend/internal/common/middleware"
	balanceservice "whitelist-tool-backend/internal/features/balance/service"
	"whitelist-tool-backend/internal/platform/solana"
)

type BalanceHandler struct {
	service balanceservice.BalanceService
}

func NewBalanceHandler(service balanceservice.BalanceService) *BalanceHandler {
	return &BalanceHandler{service: service}
}

func (h *BalanceHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/balance", h.getBalance)
}

// @Summary Check a wallet's SOL balance against the campaign minimum
// @Tags balance
// @Produce json
// @Param address query string true "Wallet public key (base58)"
// @Success 200 {object} models.BalanceCheck
// @Router /balance [get]
func (h *BalanceHandler) getBalance(c *gin.Context) {
	address := c.Query("address")
	if address == "" {
		middleware.AbortWithError(c, apperrors.New(apperrors.ErrCodeWalletMissing, "Address is required"))
		return
	}
	if !solana.ValidateAddress(address) {
		middleware.AbortWithError(c, apperrors.New(apperrors.ErrCodeValidation, "Invalid wallet address"))
		return
	}

	c.JSON(http.StatusOK, h.service.Check(c.Request.Context(), address))
}
