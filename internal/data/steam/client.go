package steam

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"

	"github.com/valcheur/go-steam-monitor/internal/core/model"
	"github.com/valcheur/go-steam-monitor/internal/util"
)

const (
	defaultBaseURL  = "https://api.steampowered.com"
	defaultLanguage = "english"
	requestTimeout  = 15 * time.Second
)

// Client talks to the Steam Web API. A nil result with a nil error is the
// valid "no data" outcome (private profile, never played, no stats); it is
// never reported as an error. Transport failures, timeouts and non-200
// statuses come back as model.ErrProviderUnavailable.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API host, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithLanguage sets the locale used for schema and achievement names.
func WithLanguage(language string) Option {
	return func(c *Client) { c.language = language }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// NewClient creates a Steam Web API client. The key may be empty; calls then
// fail with model.ErrNotConfigured.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		language: defaultLanguage,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type playerAchievementsResponse struct {
	PlayerStats struct {
		SteamID      string                 `json:"steamID"`
		GameName     string                 `json:"gameName"`
		Achievements []model.RawAchievement `json:"achievements"`
		Success      bool                   `json:"success"`
		Error        string                 `json:"error,omitempty"`
	} `json:"playerstats"`
}

// FetchPlayerAchievements returns the player's normalized achievement list
// for a game, or nil when the provider has no data for the pair.
func (c *Client) FetchPlayerAchievements(ctx context.Context, steamID string, appID int) ([]model.AchievementRecord, error) {
	if !c.Configured() {
		return nil, model.ErrNotConfigured
	}
	if steamID == "" || appID <= 0 {
		return nil, nil
	}

	params := url.Values{}
	params.Set("steamid", steamID)
	params.Set("appid", fmt.Sprintf("%d", appID))
	params.Set("l", c.language)

	body, err := c.get(ctx, "/ISteamUserStats/GetPlayerAchievements/v1/", params)
	if err != nil {
		return nil, err
	}

	var payload playerAchievementsResponse
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedResponse, err)
	}

	stats := payload.PlayerStats
	if stats.Error != "" {
		util.LogDebugf("No achievement data for steamid=%s appid=%d: %s", steamID, appID, stats.Error)
		return nil, nil
	}
	if stats.Achievements == nil {
		util.LogDebugf("Empty playerstats for steamid=%s appid=%d", steamID, appID)
		return nil, nil
	}

	return model.NormalizeAll(stats.Achievements), nil
}

type gameSchemaResponse struct {
	Game struct {
		GameName           string `json:"gameName"`
		AvailableGameStats struct {
			Achievements []struct {
				Name        string `json:"name"`
				DisplayName string `json:"displayName"`
				Description string `json:"description"`
				Hidden      int    `json:"hidden"`
			} `json:"achievements"`
		} `json:"availableGameStats"`
	} `json:"game"`
}

// FetchGameSchema returns the game's achievement definitions keyed by
// apiname, or nil when the game publishes no achievements.
func (c *Client) FetchGameSchema(ctx context.Context, appID int) (map[string]model.AchievementDefinition, error) {
	if !c.Configured() {
		return nil, model.ErrNotConfigured
	}

	params := url.Values{}
	params.Set("appid", fmt.Sprintf("%d", appID))
	params.Set("l", c.language)

	body, err := c.get(ctx, "/ISteamUserStats/GetSchemaForGame/v2/", params)
	if err != nil {
		return nil, err
	}

	var payload gameSchemaResponse
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedResponse, err)
	}

	achievements := payload.Game.AvailableGameStats.Achievements
	if len(achievements) == 0 {
		return nil, nil
	}

	schema := make(map[string]model.AchievementDefinition, len(achievements))
	for _, a := range achievements {
		schema[a.Name] = model.AchievementDefinition{
			APIName:     a.Name,
			DisplayName: a.DisplayName,
			Description: a.Description,
		}
	}
	return schema, nil
}

type globalRarityResponse struct {
	AchievementPercentages struct {
		Achievements []struct {
			Name    string  `json:"name"`
			Percent float64 `json:"percent"`
		} `json:"achievements"`
	} `json:"achievementpercentages"`
}

// FetchGlobalRarity returns global unlock percentages keyed by apiname, or
// nil when unavailable. This endpoint needs no API key.
func (c *Client) FetchGlobalRarity(ctx context.Context, appID int) (map[string]float64, error) {
	params := url.Values{}
	params.Set("gameid", fmt.Sprintf("%d", appID))

	body, err := c.get(ctx, "/ISteamUserStats/GetGlobalAchievementPercentagesForApp/v2/", params)
	if err != nil {
		return nil, err
	}

	var payload globalRarityResponse
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedResponse, err)
	}

	achievements := payload.AchievementPercentages.Achievements
	if len(achievements) == 0 {
		return nil, nil
	}

	rarity := make(map[string]float64, len(achievements))
	for _, a := range achievements {
		rarity[a.Name] = a.Percent
	}
	return rarity, nil
}

type ownedGamesResponse struct {
	Response struct {
		GameCount int `json:"game_count"`
		Games     []struct {
			AppID           int    `json:"appid"`
			Name            string `json:"name"`
			PlaytimeForever int    `json:"playtime_forever"`
		} `json:"games"`
	} `json:"response"`
}

// FetchOwnedGames returns the player's owned games with playtime, or nil for
// a private games list.
func (c *Client) FetchOwnedGames(ctx context.Context, steamID string) ([]model.OwnedGame, error) {
	if !c.Configured() {
		return nil, model.ErrNotConfigured
	}

	params := url.Values{}
	params.Set("steamid", steamID)
	params.Set("include_appinfo", "true")
	params.Set("include_played_free_games", "true")

	body, err := c.get(ctx, "/IPlayerService/GetOwnedGames/v1/", params)
	if err != nil {
		return nil, err
	}

	var payload ownedGamesResponse
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedResponse, err)
	}

	if payload.Response.Games == nil {
		return nil, nil
	}

	games := make([]model.OwnedGame, 0, len(payload.Response.Games))
	for _, g := range payload.Response.Games {
		games = append(games, model.OwnedGame{
			AppID:           g.AppID,
			Name:            g.Name,
			PlaytimeMinutes: g.PlaytimeForever,
		})
	}
	return games, nil
}

type playerSummariesResponse struct {
	Response struct {
		Players []struct {
			SteamID       string `json:"steamid"`
			PersonaName   string `json:"personaname"`
			ProfileURL    string `json:"profileurl"`
			Avatar        string `json:"avatarfull"`
			PersonaState  int    `json:"personastate"`
			LastLogoff    int64  `json:"lastlogoff"`
			GameExtraInfo string `json:"gameextrainfo"`
		} `json:"players"`
	} `json:"response"`
}

// FetchPlayerSummary returns one player's public profile, or nil when the
// provider does not know the id.
func (c *Client) FetchPlayerSummary(ctx context.Context, steamID string) (*model.PlayerSummary, error) {
	if !c.Configured() {
		return nil, model.ErrNotConfigured
	}

	params := url.Values{}
	params.Set("steamids", steamID)

	body, err := c.get(ctx, "/ISteamUser/GetPlayerSummaries/v2/", params)
	if err != nil {
		return nil, err
	}

	var payload playerSummariesResponse
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedResponse, err)
	}

	if len(payload.Response.Players) == 0 {
		return nil, nil
	}

	p := payload.Response.Players[0]
	return &model.PlayerSummary{
		SteamID:      p.SteamID,
		PersonaName:  p.PersonaName,
		ProfileURL:   p.ProfileURL,
		Avatar:       p.Avatar,
		PersonaState: p.PersonaState,
		LastLogoff:   p.LastLogoff,
		GameExtra:    p.GameExtraInfo,
	}, nil
}

// get performs one API call with the key attached and a bounded deadline.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	endpoint := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		util.LogDebugf("Steam API request failed: %s - %v", path, err)
		return nil, fmt.Errorf("%w: %v", model.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		util.LogDebugf("Steam API returned HTTP %d for %s", resp.StatusCode, path)
		return nil, fmt.Errorf("%w: unexpected status code %d", model.ErrProviderUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrProviderUnavailable, err)
	}
	return body, nil
}
