package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/valyala/fasthttp"

	"aoe2-balancer/internal/config"
)

// AoE2Client fetches ladder ratings from an aoe2.gg style API.
// Responses are cached in memory for the configured TTL so repeated
// balancing requests for the same pool do not hammer the API.
type AoE2Client struct {
	baseURL  string
	cacheTTL time.Duration
	client   *fasthttp.Client

	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo

	cacheMu sync.Mutex
	cache   map[string]cacheEntry
}

type cacheEntry struct {
	profile   *PlayerProfile
	fetchedAt time.Time
}

type RateLimitInfo struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Reset     int       `json:"reset"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlayerProfile is a player's ladder standing. Either rating may be
// missing for players who only play one ladder.
type PlayerProfile struct {
	Name    string `json:"name"`
	SteamID string `json:"steam_id"`
	Elo1v1  *int   `json:"elo_1v1"`
	EloTeam *int   `json:"elo_team"`
	Country string `json:"country"`
}

type profileResponse struct {
	Data PlayerProfile `json:"data"`
}

func NewAoE2Client(cfg *config.Config) *AoE2Client {
	return &AoE2Client{
		baseURL:  cfg.APIBaseURL,
		cacheTTL: cfg.APICacheTTL,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		cache: make(map[string]cacheEntry),
	}
}

func (c *AoE2Client) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

// GetProfile fetches a player's ratings by nickname, served from the
// cache while the entry is fresh.
func (c *AoE2Client) GetProfile(ctx context.Context, nickname string) (*PlayerProfile, error) {
	c.cacheMu.Lock()
	if entry, ok := c.cache[nickname]; ok && time.Since(entry.fetchedAt) < c.cacheTTL {
		c.cacheMu.Unlock()
		return entry.profile, nil
	}
	c.cacheMu.Unlock()

	reqURL := fmt.Sprintf("%s/players/%s", c.baseURL, url.PathEscape(nickname))
	resp, err := doRequest[profileResponse](ctx, c, reqURL)
	if err != nil {
		return nil, err
	}

	profile := resp.Data
	c.cacheMu.Lock()
	c.cache[nickname] = cacheEntry{profile: &profile, fetchedAt: time.Now()}
	c.cacheMu.Unlock()

	return &profile, nil
}

func (c *AoE2Client) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if limit := string(resp.Header.Peek("X-Ratelimit-Limit")); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			c.rateLimit.Limit = val
		}
	}
	if remaining := string(resp.Header.Peek("X-Ratelimit-Remaining")); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			c.rateLimit.Remaining = val
		}
	}
	if reset := string(resp.Header.Peek("X-Ratelimit-Reset")); reset != "" {
		if val, err := strconv.Atoi(reset); err == nil {
			c.rateLimit.Reset = val
		}
	}
	c.rateLimit.UpdatedAt = time.Now()
}

func doRequest[T any](ctx context.Context, client *AoE2Client, reqURL string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(reqURL)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	client.updateRateLimit(resp)

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("API error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
