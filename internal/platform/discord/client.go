package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const apiBaseURL = "https://discord.com/api"

// Client talks to the Discord OAuth2 and REST endpoints used by the
// whitelist chat gate: token exchange, identity and guild membership.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	redirectURI  string
}

// User is the subset of the Discord user object we read.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Guild is the subset of the partial guild object returned by
// /users/@me/guilds.
type Guild struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GuildMember is returned by /users/@me/guilds/{guild.id}/member.
type GuildMember struct {
	Roles []string `json:"roles"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func NewClient(clientID, clientSecret, redirectURI string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:      apiBaseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
	}
}

// AuthorizeURL builds the OAuth2 authorization redirect for the given
// CSRF state. Scopes cover identity and guild membership checks.
func (c *Client) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("response_type", "code")
	q.Set("scope", "identify guilds guilds.members.read")
	q.Set("redirect_uri", c.redirectURI)
	q.Set("state", state)
	q.Set("prompt", "consent")
	return c.baseURL + "/oauth2/authorize?" + q.Encode()
}

// ExchangeCode trades an authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token tokenResponse
	if err := c.do(req, &token); err != nil {
		return "", fmt.Errorf("failed to exchange code: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("empty access token in response")
	}
	return token.AccessToken, nil
}

// GetCurrentUser fetches the identity of the token's owner.
func (c *Client) GetCurrentUser(ctx context.Context, accessToken string) (*User, error) {
	req, err := c.authorizedGet(ctx, "/users/@me", accessToken)
	if err != nil {
		return nil, err
	}

	var user User
	if err := c.do(req, &user); err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return &user, nil
}

// GetCurrentUserGuilds lists the guilds the token's owner belongs to.
func (c *Client) GetCurrentUserGuilds(ctx context.Context, accessToken string) ([]Guild, error) {
	req, err := c.authorizedGet(ctx, "/users/@me/guilds", accessToken)
	if err != nil {
		return nil, err
	}

	var guilds []Guild
	if err := c.do(req, &guilds); err != nil {
		return nil, fmt.Errorf("failed to get user guilds: %w", err)
	}
	return guilds, nil
}

// GetGuildMember fetches the token owner's membership in one guild,
// including their role IDs.
func (c *Client) GetGuildMember(ctx context.Context, accessToken, guildID string) (*GuildMember, error) {
	req, err := c.authorizedGet(ctx, "/users/@me/guilds/"+guildID+"/member", accessToken)
	if err != nil {
		return nil, err
	}

	var member GuildMember
	if err := c.do(req, &member); err != nil {
		return nil, fmt.Errorf("failed to get guild member: %w", err)
	}
	return &member, nil
}

func (c *Client) authorizedGet(ctx context.Context, path, accessToken string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	return req, nil
}

func (c *Client) do(req *http.Request, dest interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("discord API returned %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
