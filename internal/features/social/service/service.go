package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"whitelist-tool-backend/internal/common/config"
	apperrors "whitelist-tool-backend/internal/common/errors"
	"whitelist-tool-backend/internal/common/logger"
	"whitelist-tool-backend/internal/features/social/models"
	"whitelist-tool-backend/internal/features/social/repository"
	"whitelist-tool-backend/internal/platform/discord"
)

const oauthStateTTL = 10 * time.Minute

// DiscordAPI is the OAuth collaborator; implemented by platform/discord.
type DiscordAPI interface {
	AuthorizeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (string, error)
	GetCurrentUser(ctx context.Context, accessToken string) (*discord.User, error)
	GetCurrentUserGuilds(ctx context.Context, accessToken string) ([]discord.Guild, error)
	GetGuildMember(ctx context.Context, accessToken, guildID string) (*discord.GuildMember, error)
}

type SocialService interface {
	// StartFollow moves the follow gate to pending for a wallet. The
	// gate is one-way: a pending or confirmed follow is never reset.
	StartFollow(ctx context.Context, address string) (*models.FollowStatus, error)
	GetFollowStatus(ctx context.Context, address string) (*models.FollowStatus, error)

	// BeginDiscordAuth stores a CSRF nonce and returns the Discord
	// authorization redirect URL.
	BeginDiscordAuth(ctx context.Context) (string, error)
	// CompleteDiscordAuth finishes the authorization-code round-trip
	// and returns the verified Discord username. Membership in the
	// required guild (and role, when configured) is checked here, once;
	// continued membership is not re-verified.
	CompleteDiscordAuth(ctx context.Context, code, state string) (string, error)

	IssueSession(username string) (string, error)
	VerifySession(token string) (string, error)

	Status(ctx context.Context, address, sessionToken string) (*models.SocialStatus, error)
}

type socialService struct {
	repo     repository.SocialRepository
	discord  DiscordAPI
	campaign config.Campaign
	session  struct {
		secret []byte
		ttl    time.Duration
	}

	now func() time.Time
}

func NewSocialService(repo repository.SocialRepository, discordAPI DiscordAPI, cfg *config.Config) SocialService {
	s := &socialService{
		repo:     repo,
		discord:  discordAPI,
		campaign: cfg.Campaign,
		now:      time.Now,
	}
	s.session.secret = []byte(cfg.Session.Secret)
	s.session.ttl = cfg.Session.TTL
	return s
}

func (s *socialService) StartFollow(ctx context.Context, address string) (*models.FollowStatus, error) {
	if address == "" {
		return nil, apperrors.New(apperrors.ErrCodeWalletMissing, "Wallet address is required")
	}

	record, err := s.repo.GetFollow(ctx, address)
	if err != nil && err != repository.ErrFollowNotFound {
		return nil, fmt.Errorf("failed to load follow record: %w", err)
	}

	if record != nil && record.State != models.FollowNotStarted {
		// Already pending or confirmed; starting again is a no-op.
		return s.toFollowStatus(ctx, address, record)
	}

	record = &models.FollowRecord{
		State:     models.FollowPending,
		ConfirmAt: s.now().Add(s.campaign.FollowConfirmDelay),
	}
	if err := s.repo.SetFollow(ctx, address, record); err != nil {
		return nil, fmt.Errorf("failed to save follow record: %w", err)
	}

	return s.toFollowStatus(ctx, address, record)
}

func (s *socialService) GetFollowStatus(ctx context.Context, address string) (*models.FollowStatus, error) {
	if address == "" {
		return nil, apperrors.New(apperrors.ErrCodeWalletMissing, "Wallet address is required")
	}

	record, err := s.repo.GetFollow(ctx, address)
	if err == repository.ErrFollowNotFound {
		return &models.FollowStatus{State: models.FollowNotStarted}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load follow record: %w", err)
	}

	return s.toFollowStatus(ctx, address, record)
}

// toFollowStatus promotes an elapsed pending follow to confirmed before
// rendering.
func (s *socialService) toFollowStatus(ctx context.Context, address string, record *models.FollowRecord) (*models.FollowStatus, error) {
	if record.State == models.FollowPending && !s.now().Before(record.ConfirmAt) {
		record.State = models.FollowConfirmed
		if err := s.repo.SetFollow(ctx, address, record); err != nil {
			// The promotion is recomputable; losing the write is not fatal.
			logger.Warn().Str("address", address).Err(err).Msg("Failed to persist follow confirmation")
		}
	}

	status := &models.FollowStatus{
		State:     record.State,
		Confirmed: record.State == models.FollowConfirmed,
	}
	if record.State == models.FollowPending {
		if left := record.ConfirmAt.Sub(s.now()); left > 0 {
			status.SecondsLeft = int(left/time.Second) + 1
		}
	}
	return status, nil
}

func (s *socialService) BeginDiscordAuth(ctx context.Context) (string, error) {
	state := uuid.New().String()
	if err := s.repo.SaveOAuthState(ctx, state, oauthStateTTL); err != nil {
		return "", fmt.Errorf("failed to save oauth state: %w", err)
	}
	return s.discord.AuthorizeURL(state), nil
}

func (s *socialService) CompleteDiscordAuth(ctx context.Context, code, state string) (string, error) {
	if code == "" {
		return "", apperrors.New(apperrors.ErrCodeValidation, "Code is required")
	}

	ok, err := s.repo.ConsumeOAuthState(ctx, state)
	if err != nil {
		return "", fmt.Errorf("failed to check oauth state: %w", err)
	}
	if !ok {
		return "", apperrors.New(apperrors.ErrCodeUnauthorized, "Invalid or expired oauth state")
	}

	accessToken, err := s.discord.ExchangeCode(ctx, code)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeDiscordAPI, "Discord token exchange failed")
	}

	user, err := s.discord.GetCurrentUser(ctx, accessToken)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeDiscordAPI, "Failed to fetch Discord identity")
	}

	guilds, err := s.discord.GetCurrentUserGuilds(ctx, accessToken)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeDiscordAPI, "Failed to fetch Discord guilds")
	}

	isMember := false
	for _, guild := range guilds {
		if guild.ID == s.campaign.RequiredDiscordGuildID {
			isMember = true
			break
		}
	}
	if !isMember {
		return "", apperrors.New(apperrors.ErrCodeForbidden, "Not a member of the required server")
	}

	if s.campaign.RequiredDiscordRoleID != "" {
		member, err := s.discord.GetGuildMember(ctx, accessToken, s.campaign.RequiredDiscordGuildID)
		if err != nil {
			return "", apperrors.Wrap(err, apperrors.ErrCodeDiscordAPI, "Failed to fetch guild membership")
		}
		hasRole := false
		for _, role := range member.Roles {
			if role == s.campaign.RequiredDiscordRoleID {
				hasRole = true
				break
			}
		}
		if !hasRole {
			return "", apperrors.New(apperrors.ErrCodeForbidden, "Missing the required server role")
		}
	}

	logger.Info().
		Str("discord_user", user.Username).
		Msg("Discord membership verified")

	return user.Username, nil
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

func (s *socialService) IssueSession(username string) (string, error) {
	now := s.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.session.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.session.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

func (s *socialService) VerifySession(token string) (string, error) {
	if token == "" {
		return "", apperrors.New(apperrors.ErrCodeUnauthorized, "No session")
	}

	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.session.secret, nil
	})
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "Invalid session")
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || claims.Subject == "" {
		return "", apperrors.New(apperrors.ErrCodeUnauthorized, "Invalid session")
	}
	return claims.Subject, nil
}

func (s *socialService) Status(ctx context.Context, address, sessionToken string) (*models.SocialStatus, error) {
	status := &models.SocialStatus{
		Follow: models.FollowStatus{State: models.FollowNotStarted},
	}

	if address != "" {
		follow, err := s.GetFollowStatus(ctx, address)
		if err != nil {
			return nil, err
		}
		status.Follow = *follow
	}

	if username, err := s.VerifySession(sessionToken); err == nil {
		status.DiscordConnected = true
		status.DiscordUsername = username
	}

	return status, nil
}
