// Package api implements the FACEIT data gateway.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"faceit-tracker/internal/config"
	"faceit-tracker/internal/constants"

	"github.com/sethvargo/go-retry"
	"github.com/valyala/fasthttp"
)

const (
	dataAPIBase  = "https://open.faceit.com/data/v4"
	statsAPIBase = "https://api.faceit.com/stats/v1"
)

type FaceitClient struct {
	apiKey string
	client *fasthttp.Client
}

func NewFaceitClient(cfg *config.Config) *FaceitClient {
	return &FaceitClient{
		apiKey: cfg.FaceitAPIKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

func (c *FaceitClient) GetPlayer(ctx context.Context, playerID string) (*PlayerResponse, error) {
	url := fmt.Sprintf("%s/players/%s", dataAPIBase, playerID)
	return doRequest[PlayerResponse](ctx, c, url)
}

func (c *FaceitClient) GetMatchHistory(ctx context.Context, playerID string, limit int) (*MatchHistoryResponse, error) {
	url := fmt.Sprintf("%s/players/%s/history?game=cs2&offset=0&limit=%d", dataAPIBase, playerID, limit)
	return doRequest[MatchHistoryResponse](ctx, c, url)
}

func (c *FaceitClient) GetLifetimeStats(ctx context.Context, playerID string) (*LifetimeStatsResponse, error) {
	url := fmt.Sprintf("%s/players/%s/stats/cs2", dataAPIBase, playerID)
	return doRequest[LifetimeStatsResponse](ctx, c, url)
}

func (c *FaceitClient) GetRatingHistory(ctx context.Context, playerID string) ([]RatingHistoryItem, error) {
	url := fmt.Sprintf("%s/stats/time/users/%s/games/cs2?size=%d", statsAPIBase, playerID, constants.MatchHistoryLimit)
	items, err := doRequest[[]RatingHistoryItem](ctx, c, url)
	if err != nil {
		return nil, err
	}
	return *items, nil
}

func (c *FaceitClient) GetMatchStats(ctx context.Context, matchID string) (*MatchStatsResponse, error) {
	url := fmt.Sprintf("%s/matches/%s/stats", dataAPIBase, matchID)
	return doRequest[MatchStatsResponse](ctx, c, url)
}

func doRequest[T any](ctx context.Context, client *FaceitClient, url string) (*T, error) {
	var result T

	backoff := retry.WithMaxRetries(constants.APIMaxRetries, retry.NewExponential(constants.APIRetryBaseDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req := fasthttp.AcquireRequest()
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseRequest(req)
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(url)
		req.Header.SetMethod(fasthttp.MethodGet)
		req.Header.Set("Authorization", "Bearer "+client.apiKey)

		var err error
		if deadline, ok := ctx.Deadline(); ok {
			err = client.client.DoDeadline(req, resp, deadline)
		} else {
			err = client.client.Do(req, resp)
		}
		if err != nil {
			return retry.RetryableError(err)
		}

		status := resp.StatusCode()
		if status == fasthttp.StatusTooManyRequests || status >= 500 {
			return retry.RetryableError(fmt.Errorf("API error: %d", status))
		}
		if status != fasthttp.StatusOK {
			return fmt.Errorf("API error: %d", status)
		}

		return json.Unmarshal(resp.Body(), &result)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

type PlayerResponse struct {
	PlayerID  string `json:"player_id"`
	Nickname  string `json:"nickname"`
	Avatar    string `json:"avatar"`
	FaceitURL string `json:"faceit_url"`
	Games     struct {
		CS2 struct {
			SkillLevel int    `json:"skill_level"`
			FaceitElo  int    `json:"faceit_elo"`
			Region     string `json:"region"`
		} `json:"cs2"`
	} `json:"games"`
}

type MatchHistoryResponse struct {
	Items []MatchHistoryItem `json:"items"`
}

type MatchHistoryItem struct {
	MatchID    string              `json:"match_id"`
	Status     string              `json:"status"`
	StartedAt  int64               `json:"started_at"`
	FinishedAt int64               `json:"finished_at"`
	Teams      map[string]Faction  `json:"teams"`
	Results    MatchHistoryResults `json:"results"`
}

type Faction struct {
	Nickname string          `json:"nickname"`
	Players  []FactionPlayer `json:"players"`
}

type FactionPlayer struct {
	PlayerID  string `json:"player_id"`
	Nickname  string `json:"nickname"`
	Avatar    string `json:"avatar"`
	FaceitURL string `json:"faceit_url"`
}

type MatchHistoryResults struct {
	Winner string         `json:"winner"`
	Score  map[string]int `json:"score"`
}

// LifetimeStatsResponse carries the lifetime block; FACEIT delivers every
// value as a string keyed by display name.
type LifetimeStatsResponse struct {
	PlayerID string            `json:"player_id"`
	Lifetime map[string]string `json:"lifetime"`
}

// RatingHistoryItem is raw elo telemetry: millisecond dates, numerics as
// strings, newest-first.
type RatingHistoryItem struct {
	Date     json.Number `json:"date"`
	Elo      string      `json:"elo"`
	EloDelta string      `json:"elo_delta"`
}

type MatchStatsResponse struct {
	Rounds []MatchStatsRound `json:"rounds"`
}

type MatchStatsRound struct {
	RoundStats struct {
		Map    string `json:"Map"`
		Score  string `json:"Score"`
		Rounds string `json:"Rounds"`
	} `json:"round_stats"`
	Teams []MatchStatsTeam `json:"teams"`
}

type MatchStatsTeam struct {
	TeamID  string             `json:"team_id"`
	Players []MatchStatsPlayer `json:"players"`
}

type MatchStatsPlayer struct {
	PlayerID    string            `json:"player_id"`
	Nickname    string            `json:"nickname"`
	PlayerStats map[string]string `json:"player_stats"`
}
