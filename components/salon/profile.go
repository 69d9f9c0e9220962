package salon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// ProfileSource fetches the signed-in user's profile.
type ProfileSource interface {
	FetchProfile(ctx context.Context) (Profile, error)
}

// ProfileView is a profile together with its merged history feed.
// Placeholder is set when the view was synthesized after a failed load.
type ProfileView struct {
	Profile     Profile    `json:"profile"`
	Feed        []FeedItem `json:"feed"`
	Placeholder bool       `json:"placeholder,omitempty"`
}

// ProfileLoader loads the profile for the Telegram user identified by the
// Mini App init data.
type ProfileLoader struct {
	source   ProfileSource
	initData string
}

// NewProfileLoader builds a loader. initData is the raw Telegram WebApp
// initData string the backend authenticates.
func NewProfileLoader(source ProfileSource, initData string) *ProfileLoader {
	return &ProfileLoader{source: source, initData: initData}
}

// Load fetches the profile and merges its transactions and visits.
func (l *ProfileLoader) Load(ctx context.Context) (ProfileView, error) {
	if strings.TrimSpace(l.initData) == "" {
		return ProfileView{}, ErrNoInitData
	}
	if l.source == nil {
		return ProfileView{}, ErrGatewayRequired
	}
	profile, err := l.source.FetchProfile(ctx)
	if err != nil {
		return ProfileView{}, fmt.Errorf("salon: load profile: %w", err)
	}
	return ProfileView{
		Profile: profile,
		Feed:    MergeFeed(profile.History, profile.Visits),
	}, nil
}

// TelegramUser is the user object embedded in Mini App init data.
type TelegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
	Language  string `json:"language_code,omitempty"`
}

// ParseInitDataUser extracts the unverified user from raw init data. The
// signature is checked by the backend, never here.
func ParseInitDataUser(initData string) (TelegramUser, bool) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return TelegramUser{}, false
	}
	raw := values.Get("user")
	if raw == "" {
		return TelegramUser{}, false
	}
	var user TelegramUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return TelegramUser{}, false
	}
	return user, true
}

// PlaceholderProfile is shown when the profile cannot be loaded.
func PlaceholderProfile(initData, locale string) ProfileView {
	name := Message("profile.default_name", locale)
	if user, ok := ParseInitDataUser(initData); ok && strings.TrimSpace(user.FirstName) != "" {
		name = user.FirstName
	}
	return ProfileView{
		Profile: Profile{
			User: User{
				Name:    name,
				Balance: 0,
				Phone:   "-",
				Level:   UserLevel("NEW"),
			},
			History: []Transaction{},
			Visits:  []Visit{},
		},
		Feed:        []FeedItem{},
		Placeholder: true,
	}
}
