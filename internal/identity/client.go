package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cinelink/internal/services"
	"cinelink/internal/utils"
)

const (
	profileCacheSize = 500
	profileCacheTTL  = 5 * time.Minute
)

// Client talks to the identity service that owns accounts and profile images.
// Profiles are cached briefly so hot threads don't hammer the service with the
// same author ids on every page load.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *utils.TTLCache[uint, services.Profile]
}

func NewClient(baseURL string) (*Client, error) {
	cache, err := utils.NewTTLCache[uint, services.Profile](profileCacheSize, profileCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile cache: %w", err)
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
		cache:   cache,
	}, nil
}

// Profile fetches one user's profile, serving from cache when fresh.
func (c *Client) Profile(ctx context.Context, userID uint) (*services.Profile, error) {
	if cached, ok := c.cache.Get(userID); ok {
		return &cached, nil
	}

	url := fmt.Sprintf("%s/v1/users/%d/profile", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity service returned status %d for user %d", resp.StatusCode, userID)
	}

	var profile services.Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}

	c.cache.Set(userID, profile)
	return &profile, nil
}
