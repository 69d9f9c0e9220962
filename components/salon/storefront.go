package salon

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
)

// StorefrontOptions configures the Mini App storefront loader.
type StorefrontOptions struct {
	Content    ContentSource
	Profile    ProfileSource
	InitData   string
	BookingURL string
	Locale     string
	Telemetry  Telemetry
}

// Storefront loads the public content and the user profile side by side.
type Storefront struct {
	opts StorefrontOptions
}

// NewStorefront builds a storefront with safe defaults.
func NewStorefront(opts StorefrontOptions) *Storefront {
	if strings.TrimSpace(opts.BookingURL) == "" {
		opts.BookingURL = DefaultBookingURL
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Storefront{opts: opts}
}

// StorefrontView is the fully settled storefront. Failed sections carry their
// fallback data and the error that caused it.
type StorefrontView struct {
	Content    Content         `json:"content"`
	Cards      StorefrontCards `json:"cards"`
	Profile    ProfileView     `json:"profile"`
	BookingURL string          `json:"booking_url"`
	ContentErr error           `json:"-"`
	ProfileErr error           `json:"-"`
}

// Load fetches content and profile concurrently. Neither failure blocks the
// other: content falls back to empty lists and profile to a placeholder.
func (s *Storefront) Load(ctx context.Context) StorefrontView {
	var (
		g          errgroup.Group
		content    Content
		contentErr error
		profile    ProfileView
		profileErr error
	)
	g.Go(func() error {
		content, contentErr = s.loadContent(ctx)
		return nil
	})
	g.Go(func() error {
		profile, profileErr = NewProfileLoader(s.opts.Profile, s.opts.InitData).Load(ctx)
		return nil
	})
	_ = g.Wait()

	view := StorefrontView{
		Content:    content,
		Profile:    profile,
		BookingURL: s.opts.BookingURL,
		ContentErr: contentErr,
		ProfileErr: profileErr,
	}
	if contentErr != nil {
		view.Content = Content{Promotions: []Promotion{}, Services: []Service{}, Masters: []Master{}}
	} else if strings.TrimSpace(content.BookingURL) != "" {
		view.BookingURL = content.BookingURL
	}
	if profileErr != nil {
		view.Profile = PlaceholderProfile(s.opts.InitData, s.opts.Locale)
	}
	view.Cards = RenderContent(view.Content, s.opts.Locale)

	s.opts.Telemetry.Record(ctx, "salon.storefront.load", map[string]any{
		"content_ok": contentErr == nil,
		"profile_ok": profileErr == nil,
	})
	return view
}

func (s *Storefront) loadContent(ctx context.Context) (Content, error) {
	if s.opts.Content == nil {
		return Content{}, ErrGatewayRequired
	}
	return s.opts.Content.FetchContent(ctx)
}
