package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Postgres struct {
		Host            string        `env:"POSTGRES_HOST" envDefault:"localhost"`
		Port            int           `env:"POSTGRES_PORT" envDefault:"5432"`
		User            string        `env:"POSTGRES_USER" envDefault:"postgres"`
		Password        string        `env:"POSTGRES_PASSWORD" envDefault:""`
		Database        string        `env:"POSTGRES_DB" envDefault:"whitelist"`
		SSLMode         string        `env:"POSTGRES_SSLMODE" envDefault:"disable"`
		MaxOpenConns    int           `env:"POSTGRES_MAX_OPEN_CONNS" envDefault:"25"`
		MaxIdleConns    int           `env:"POSTGRES_MAX_IDLE_CONNS" envDefault:"5"`
		ConnMaxLifetime time.Duration `env:"POSTGRES_CONN_MAX_LIFETIME" envDefault:"5m"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Solana struct {
		RPCEndpoint string        `env:"SOLANA_RPC_ENDPOINT" envDefault:"https://api.mainnet-beta.solana.com"`
		Timeout     time.Duration `env:"SOLANA_RPC_TIMEOUT" envDefault:"10s"`
		// TTL for the per-address balance cache in Redis.
		BalanceCacheTTL time.Duration `env:"BALANCE_CACHE_TTL" envDefault:"15s"`
	}

	Discord struct {
		ClientID     string `env:"DISCORD_CLIENT_ID"`
		ClientSecret string `env:"DISCORD_CLIENT_SECRET"`
		RedirectURI  string `env:"DISCORD_REDIRECT_URI"`
	}

	Session struct {
		// Secret used to sign the Discord session cookie.
		Secret string        `env:"SESSION_SECRET" envDefault:"dev-secret-change-me"`
		TTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	}

	Campaign Campaign
}

// Campaign describes a single whitelist campaign. It is loaded once at
// startup and passed around as an immutable value; services never read
// campaign parameters from the environment directly.
type Campaign struct {
	ProjectName string `env:"PROJECT_NAME" envDefault:"Test Project"`
	Description string `env:"PROJECT_DESCRIPTION" envDefault:""`
	WebsiteURL  string `env:"PROJECT_WEBSITE_URL" envDefault:""`
	TwitterURL  string `env:"PROJECT_TWITTER_URL" envDefault:""`
	DiscordURL  string `env:"PROJECT_DISCORD_URL" envDefault:""`

	RegistrationStart time.Time `env:"REGISTRATION_START"`
	RegistrationEnd   time.Time `env:"REGISTRATION_END"`

	// Minimum wallet balance in SOL required to register.
	MinimumBalance float64 `env:"MINIMUM_WALLET_BALANCE" envDefault:"0"`

	// RegistrationLimit caps the number of whitelist entries.
	// Zero means unlimited.
	RegistrationLimit int `env:"REGISTRATION_LIMIT" envDefault:"0"`

	MintPrice       float64 `env:"MINT_PRICE" envDefault:"0"`
	TotalSupply     int     `env:"TOTAL_SUPPLY" envDefault:"0"`
	NumberOfWinners int     `env:"NUMBER_OF_WINNERS" envDefault:"0"`

	RequireTwitterFollow bool `env:"REQUIRE_TWITTER_FOLLOW" envDefault:"false"`
	RequireDiscordMember bool `env:"REQUIRE_DISCORD_MEMBER" envDefault:"false"`

	RequiredDiscordGuildID string `env:"REQUIRED_DISCORD_GUILD_ID"`
	RequiredDiscordRoleID  string `env:"REQUIRED_DISCORD_ROLE_ID"`

	// FollowConfirmDelay is how long the follow gate waits before
	// reporting the follow as confirmed. The follow check is a fixed
	// wait, not a real Twitter API verification.
	FollowConfirmDelay time.Duration `env:"FOLLOW_CONFIRM_DELAY" envDefault:"20s"`
}

// Unlimited reports whether the campaign has no registration cap.
func (c Campaign) Unlimited() bool {
	return c.RegistrationLimit <= 0
}

// Validate checks campaign invariants that cannot be expressed as env tags.
func (c Campaign) Validate() error {
	if c.RegistrationStart.IsZero() || c.RegistrationEnd.IsZero() {
		return fmt.Errorf("REGISTRATION_START and REGISTRATION_END are required")
	}
	if !c.RegistrationStart.Before(c.RegistrationEnd) {
		return fmt.Errorf("registration start %s must be before end %s",
			c.RegistrationStart.Format(time.RFC3339), c.RegistrationEnd.Format(time.RFC3339))
	}
	if c.MinimumBalance < 0 {
		return fmt.Errorf("MINIMUM_WALLET_BALANCE must be non-negative")
	}
	if c.RegistrationLimit < 0 {
		return fmt.Errorf("REGISTRATION_LIMIT must be non-negative")
	}
	if c.RequireDiscordMember && c.RequiredDiscordGuildID == "" {
		return fmt.Errorf("REQUIRED_DISCORD_GUILD_ID is required when REQUIRE_DISCORD_MEMBER is set")
	}
	return nil
}

func Load() (*Config, error) {
	// Missing .env is fine; in production the variables are set directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Campaign.Validate(); err != nil {
		return nil, fmt.Errorf("invalid campaign config: %w", err)
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetDSN builds a lib/pq connection string.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Postgres.Host, c.Postgres.Port, c.Postgres.User,
		c.Postgres.Password, c.Postgres.Database, c.Postgres.SSLMode)
}
