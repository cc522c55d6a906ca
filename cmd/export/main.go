// Command export dumps every whitelisted address to a JSON file.
//
// Usage:
//
//	go run ./cmd/export [-o whitelist.json]
//
// Connection settings come from the same environment variables (or .env)
// as the server.
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
	"whitelist-tool-backend/internal/platform/postgres"
)

func main() {
	output := flag.String("o", "whitelist.json", "output file")
	flag.Parse()

	cfg := config.MustLoad()
	logger.Init("whitelist-export", cfg.Debug)

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

	addresses := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Address != "" {
			addresses = append(addresses, entry.Address)
		}
	}

	data, err := json.MarshalIndent(addresses, "", "  ")
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to marshal addresses")
	}

	if err := os.WriteFile(*output, data, 0o644); err != nil {
		logger.Fatal().Err(err).Msg("Failed to write output file")
	}

	logger.Info().
		Int("count", len(addresses)).
		Str("file", *output).
		Msg("Whitelist exported")
}
