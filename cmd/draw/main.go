// Command draw picks a uniform random sample of whitelist entries,
// without replacement, and writes the winners to a JSON file.
//
// Usage:
//
//	go run ./cmd/draw [-n winners] [-o winners.json]
//
// When -n is omitted the campaign's NUMBER_OF_WINNERS is used.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"whitelist-tool-backend/internal/common/config"
	"whitelist-tool-backend/internal/common/logger"
	whitelistpg "whitelist-tool-backend/internal/features/whitelist/repository/postgres"
	whitelistservice "whitelist-tool-backend/internal/features/whitelist/service"
	"whitelist-tool-backend/internal/platform/postgres"
)

func main() {
	winners := flag.Int("n", 0, "number of winners (defaults to NUMBER_OF_WINNERS)")
	output := flag.String("o", "winners.json", "output file")
	flag.Parse()

	cfg := config.MustLoad()
	logger.Init("whitelist-draw", cfg.Debug)

	count := *winners
	if count <= 0 {
		count = cfg.Campaign.NumberOfWinners
	}
	if count <= 0 {
		logger.Fatal().Msg("Winner count must be positive; pass -n or set NUMBER_OF_WINNERS")
	}

	postgresClient, err := postgres.NewClient(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer postgresClient.Close()

	repo := whitelistpg.NewPostgresRepository(postgresClient.GetDB())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	entries, err := repo.GetAll(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load whitelist entries")
	}
	if len(entries) == 0 {
		logger.Fatal().Msg("Whitelist is empty, nothing to draw")
	}

	selected, err := whitelistservice.SampleWinners(entries, count)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to sample winners")
	}

	addresses := make([]string, 0, len(selected))
	for _, entry := range selected {
		addresses = append(addresses, entry.Address)
	}

	data, err := json.MarshalIndent(addresses, "", "  ")
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to marshal winners")
	}

	if err := os.WriteFile(*output, data, 0o644); err != nil {
		logger.Fatal().Err(err).Msg("Failed to write output file")
	}

	logger.Info().
		Int("pool", len(entries)).
		Int("winners", len(addresses)).
		Str("file", *output).
		Msg("Winners drawn")
}
