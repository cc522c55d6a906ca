package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"whitelist-tool-backend/internal/common/config"
	"whitelist-tool-backend/internal/common/logger"
	"whitelist-tool-backend/internal/common/middleware"
	balancehttp "whitelist-tool-backend/internal/features/balance/delivery/http"
	balanceservice "whitelist-tool-backend/internal/features/balance/service"
	campaignhttp "whitelist-tool-backend/internal/features/campaign/delivery/http"
	campaignservice "whitelist-tool-backend/internal/features/campaign/service"
	socialhttp "whitelist-tool-backend/internal/features/social/delivery/http"
	socialredis "whitelist-tool-backend/internal/features/social/repository/redis"
	socialservice "whitelist-tool-backend/internal/features/social/service"
	whitelisthttp "whitelist-tool-backend/internal/features/whitelist/delivery/http"
	whitelistpg "whitelist-tool-backend/internal/features/whitelist/repository/postgres"
	whitelistservice "whitelist-tool-backend/internal/features/whitelist/service"
	"whitelist-tool-backend/internal/platform/discord"
	"whitelist-tool-backend/internal/platform/postgres"
	redisplatform "whitelist-tool-backend/internal/platform/redis"
	"whitelist-tool-backend/internal/platform/solana"
)

// @title           Whitelist Tool API
// @version         1.0
// @description     Backend for an NFT mint whitelist signup page: campaign
// @description     status, balance and social gates, and entry submission.

// @host      localhost:8080
// @BasePath  /api/v1

func main() {
	cfg := config.MustLoad()

	logger.Init("whitelist-tool-backend", cfg.Debug)

	logger.Info().
		Str("project", cfg.Campaign.ProjectName).
		Time("registration_start", cfg.Campaign.RegistrationStart).
		Time("registration_end", cfg.Campaign.RegistrationEnd).
		Bool("debug", cfg.Debug).
		Msg("Starting Whitelist Tool Backend")

	postgresClient, err := postgres.NewClient(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer postgresClient.Close()

	if err := whitelistpg.EnsureSchema(context.Background(), postgresClient.GetDB()); err != nil {
		logger.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	redisClient, err := redisplatform.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Platform clients.
	solanaClient := solana.NewClient(cfg.Solana.RPCEndpoint, cfg.Solana.Timeout)
	discordClient := discord.NewClient(cfg.Discord.ClientID, cfg.Discord.ClientSecret, cfg.Discord.RedirectURI)

	// Repositories.
	whitelistRepo := whitelistpg.NewPostgresRepository(postgresClient.GetDB())
	socialRepo := socialredis.NewRedisRepository(redisClient)

	// Services.
	campaignSvc := campaignservice.NewCampaignService(cfg.Campaign)
	balanceSvc := balanceservice.NewBalanceService(solanaClient, redisClient, cfg.Campaign, cfg.Solana.BalanceCacheTTL)
	socialSvc := socialservice.NewSocialService(socialRepo, discordClient, cfg)
	whitelistSvc := whitelistservice.NewWhitelistService(whitelistRepo, campaignSvc, balanceSvc, socialSvc)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	campaignhttp.NewCampaignHandler(campaignSvc, whitelistSvc).RegisterRoutes(v1)
	balancehttp.NewBalanceHandler(balanceSvc).RegisterRoutes(v1)
	socialhttp.NewSocialHandler(socialSvc, cfg).RegisterRoutes(v1)
	whitelisthttp.NewWhitelistHandler(whitelistSvc).RegisterRoutes(v1)

	router.GET("/health", func(c *gin.Context) {
		if err := postgresClient.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "whitelist-tool-backend",
		})
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}
