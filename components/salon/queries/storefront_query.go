package queries

import (
	"context"
	"errors"
	"strings"
	"time"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-salon/components/salon"
)

// StorefrontInput is empty: the storefront is bound to one Mini App session.
type StorefrontInput struct{}

type storefrontLoader interface {
	Load(ctx context.Context) salon.StorefrontView
}

// StorefrontQuery loads content and profile side by side.
type StorefrontQuery struct {
	storefront storefrontLoader
}

// NewStorefrontQuery builds the query.
func NewStorefrontQuery(storefront storefrontLoader) *StorefrontQuery {
	return &StorefrontQuery{storefront: storefront}
}

var _ gocommand.Querier[StorefrontInput, salon.StorefrontView] = (*StorefrontQuery)(nil)

// Query resolves the view from the collaborator.
func (q *StorefrontQuery) Query(ctx context.Context, _ StorefrontInput) (salon.StorefrontView, error) {
	if q.storefront == nil {
		return salon.StorefrontView{}, errors.New("queries: storefront is required")
	}
	return q.storefront.Load(ctx), nil
}

// PromotionInput selects a promotion for the detail view.
type PromotionInput struct {
	ID     int64
	Locale string
}

// PromotionDetailQuery resolves a promotion and its call to action.
type PromotionDetailQuery struct {
	content    salon.ContentSource
	bookingURL string
}

// NewPromotionDetailQuery builds the query.
func NewPromotionDetailQuery(content salon.ContentSource, bookingURL string) *PromotionDetailQuery {
	return &PromotionDetailQuery{content: content, bookingURL: bookingURL}
}

var _ gocommand.Querier[PromotionInput, salon.PromotionView] = (*PromotionDetailQuery)(nil)

// Query resolves the view from the collaborator.
func (q *PromotionDetailQuery) Query(ctx context.Context, input PromotionInput) (salon.PromotionView, error) {
	if q.content == nil {
		return salon.PromotionView{}, salon.ErrGatewayRequired
	}
	content, err := q.content.FetchContent(ctx)
	if err != nil {
		return salon.PromotionView{}, err
	}
	return salon.PromotionDetail(content, input.ID, q.bookingURL, input.Locale)
}

// HistoryInput renders a user's ledger. Zero UserID means the session user.
type HistoryInput struct {
	UserID int64
	Locale string
}

type transactionLister interface {
	UserTransactions(ctx context.Context, userID int64) ([]salon.Transaction, error)
}

// HistoryQuery renders a transaction history with expiry badges, either for
// the Mini App user (via the profile) or for any user through the admin API.
type HistoryQuery struct {
	profile salon.ProfileSource
	admin   transactionLister
	now     func() time.Time
}

// NewHistoryQuery builds the query.
func NewHistoryQuery(profile salon.ProfileSource, admin transactionLister) *HistoryQuery {
	return &HistoryQuery{profile: profile, admin: admin, now: time.Now}
}

var _ gocommand.Querier[HistoryInput, salon.HistoryView] = (*HistoryQuery)(nil)

// Query resolves the view from the collaborator.
func (q *HistoryQuery) Query(ctx context.Context, input HistoryInput) (salon.HistoryView, error) {
	var (
		history []salon.Transaction
		err     error
	)
	switch {
	case input.UserID != 0 && q.admin != nil:
		history, err = q.admin.UserTransactions(ctx, input.UserID)
	case input.UserID == 0 && q.profile != nil:
		var profile salon.Profile
		profile, err = q.profile.FetchProfile(ctx)
		history = profile.History
	default:
		return salon.HistoryView{}, salon.ErrGatewayRequired
	}
	if err != nil {
		return salon.HistoryView{}, err
	}
	return salon.RenderHistory(history, q.now(), input.Locale), nil
}

// BalanceChartInput tunes the rendered chart.
type BalanceChartInput struct {
	Theme  string
	Locale string
}

// BalanceChartQuery renders the session user's balance over time as an
// ECharts HTML fragment.
type BalanceChartQuery struct {
	profile salon.ProfileSource
	cache   salon.RenderCache
	assets  string
}

// NewBalanceChartQuery builds the query.
func NewBalanceChartQuery(profile salon.ProfileSource, cache salon.RenderCache, assetsHost string) *BalanceChartQuery {
	return &BalanceChartQuery{profile: profile, cache: cache, assets: strings.TrimSpace(assetsHost)}
}

var _ gocommand.Querier[BalanceChartInput, string] = (*BalanceChartQuery)(nil)

// Query resolves the view from the collaborator.
func (q *BalanceChartQuery) Query(ctx context.Context, input BalanceChartInput) (string, error) {
	if q.profile == nil {
		return "", salon.ErrGatewayRequired
	}
	profile, err := q.profile.FetchProfile(ctx)
	if err != nil {
		return "", err
	}
	return salon.BalanceChart(profile.History, profile.User.Balance, salon.BalanceChartOptions{
		Theme:      input.Theme,
		AssetsHost: q.assets,
		Locale:     input.Locale,
		Cache:      q.cache,
	})
}
