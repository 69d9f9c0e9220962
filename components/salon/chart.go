package salon

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "320px"

// RenderCache memoizes rendered chart HTML.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// ChartCache is an in-memory TTL cache for rendered charts. A zero TTL
// disables caching.
type ChartCache struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.RWMutex
	byKey map[string]renderedChart
}

type renderedChart struct {
	html    string
	expires time.Time
}

// NewChartCache builds a cache with the provided TTL.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{
		ttl:   ttl,
		now:   time.Now,
		byKey: make(map[string]renderedChart),
	}
}

// GetOrRender returns the cached HTML for key or renders and stores it.
// Render errors are never cached.
func (c *ChartCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if html, ok := c.lookup(key); ok {
		return html, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	c.store(key, html)
	return html, nil
}

// Len reports how many unexpired charts the cache holds.
func (c *ChartCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	now := c.now()
	live := 0
	for _, entry := range c.byKey {
		if now.Before(entry.expires) {
			live++
		}
	}
	return live
}

func (c *ChartCache) lookup(key string) (string, bool) {
	if c == nil || c.ttl <= 0 {
		return "", false
	}
	c.mu.RLock()
	entry, ok := c.byKey[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if !c.now().Before(entry.expires) {
		c.mu.Lock()
		delete(c.byKey, key)
		c.mu.Unlock()
		return "", false
	}
	return entry.html, true
}

func (c *ChartCache) store(key, html string) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.byKey[key] = renderedChart{html: html, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// BalancePoint is the balance right after one transaction.
type BalancePoint struct {
	Label   string    `json:"label"`
	At      time.Time `json:"at"`
	Balance int       `json:"balance"`
}

// BalanceSeries replays history oldest first and returns the running balance
// ending at current. Transactions with unreadable dates are skipped.
func BalanceSeries(history []Transaction, current int) []BalancePoint {
	type dated struct {
		at     time.Time
		amount int
	}
	rows := make([]dated, 0, len(history))
	total := 0
	for _, tx := range history {
		at, ok := parseTimestamp(tx.CreatedAt)
		if !ok {
			continue
		}
		rows = append(rows, dated{at: at, amount: tx.Amount})
		total += tx.Amount
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].at.Before(rows[j].at) })

	balance := current - total
	points := make([]BalancePoint, 0, len(rows))
	for _, row := range rows {
		balance += row.amount
		points = append(points, BalancePoint{
			Label:   row.at.Format("02.01"),
			At:      row.at,
			Balance: balance,
		})
	}
	return points
}

// BalanceChartOptions tunes BalanceChart.
type BalanceChartOptions struct {
	Title      string
	Theme      string
	AssetsHost string
	Locale     string
	Cache      RenderCache
}

// BalanceChart renders the running balance as go-echarts HTML. Identical
// inputs hit the cache when one is configured.
func BalanceChart(history []Transaction, current int, options BalanceChartOptions) (string, error) {
	points := BalanceSeries(history, current)
	if len(points) == 0 {
		return "", fmt.Errorf("salon: balance chart: %w", ErrNotFound)
	}
	title := strings.TrimSpace(options.Title)
	if title == "" {
		title = Message("chart.balance_title", options.Locale)
	}
	theme := options.Theme
	if theme == "" {
		theme = types.ThemeWesteros
	}

	render := func() (string, error) {
		line := charts.NewLine()
		initOpts := opts.Initialization{Theme: theme, Width: "100%", Height: defaultChartHeight}
		if options.AssetsHost != "" {
			initOpts.AssetsHost = options.AssetsHost
		}
		line.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{Title: title}),
			charts.WithInitializationOpts(initOpts),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		)
		labels := make([]string, len(points))
		data := make([]opts.LineData, len(points))
		for i, point := range points {
			labels[i] = point.Label
			data[i] = opts.LineData{Name: point.Label, Value: point.Balance}
		}
		line.SetXAxis(labels)
		line.AddSeries(Message("chart.balance_series", options.Locale), data)
		line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
		return renderChart(line)
	}
	if options.Cache == nil {
		return render()
	}
	key := "balance:" + theme + ":" + chartHash(title, points)
	return options.Cache.GetOrRender(key, render)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", fmt.Errorf("salon: render chart: %w", err)
	}
	return buf.String(), nil
}

func chartHash(title string, points []BalancePoint) string {
	b, err := json.Marshal(struct {
		Title  string         `json:"title"`
		Points []BalancePoint `json:"points"`
	}{title, points})
	if err != nil {
		return "invalid"
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
