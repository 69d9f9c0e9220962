package apiclient

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-salon/components/salon"
)

var (
	_ salon.ContentSource = (*Client)(nil)
	_ salon.ProfileSource = (*Client)(nil)
)

// FetchContent loads the public storefront collections.
func (c *Client) FetchContent(ctx context.Context) (salon.Content, error) {
	var content salon.Content
	if err := c.do(ctx, http.MethodGet, "/api/app/content", nil, nil, &content); err != nil {
		return salon.Content{}, err
	}
	if content.Promotions == nil {
		content.Promotions = []salon.Promotion{}
	}
	if content.Services == nil {
		content.Services = []salon.Service{}
	}
	if content.Masters == nil {
		content.Masters = []salon.Master{}
	}
	return content, nil
}

// FetchProfile loads the profile of the session's Telegram user.
func (c *Client) FetchProfile(ctx context.Context) (salon.Profile, error) {
	if strings.TrimSpace(c.initData) == "" {
		return salon.Profile{}, salon.ErrNoInitData
	}
	var profile salon.Profile
	if err := c.do(ctx, http.MethodGet, "/api/app/profile", nil, nil, &profile); err != nil {
		return salon.Profile{}, err
	}
	if profile.History == nil {
		profile.History = []salon.Transaction{}
	}
	if profile.Visits == nil {
		profile.Visits = []salon.Visit{}
	}
	return profile, nil
}
