package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-salon/pkg/logger"
)

// InitDataHeader carries the raw Telegram WebApp init data on every call.
const InitDataHeader = "X-Tg-Init-Data"

// RequestIDHeader tags each call so backend logs can be correlated.
const RequestIDHeader = "X-Request-Id"

// Config configures the REST gateway client.
type Config struct {
	BaseURL    string
	InitData   string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     logger.ILogger
	// Registerer receives the client metrics. Nil leaves them unregistered.
	Registerer prometheus.Registerer
	Namespace  string
}

// Client talks to the salon backend. It implements the salon gateway ports
// (buttons, content, profile and admin).
type Client struct {
	baseURL  string
	initData string
	client   *http.Client
	log      logger.ILogger
	metrics  *metrics
	now      func() time.Time
	newID    func() string
}

// New builds a client for the backend rooted at cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("apiclient: base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("apiclient: invalid base url: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	m, err := newMetrics(cfg.Namespace, cfg.Registerer)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:  base,
		initData: cfg.InitData,
		client:   httpClient,
		log:      log,
		metrics:  m,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}, nil
}

// WithInitData returns a copy of the client that authenticates as another
// Mini App session. Metrics and the transport are shared.
func (c *Client) WithInitData(initData string) *Client {
	clone := *c
	clone.initData = initData
	return &clone
}

// InitData returns the raw init data sent with every call.
func (c *Client) InitData() string {
	return c.initData
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any, target any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("apiclient: encode payload: %w", err)
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}
	return c.send(ctx, method, path, query, body, contentType, target)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, target any) error {
	if query == nil {
		query = url.Values{}
	}
	if method == http.MethodGet {
		query.Set("_t", strconv.FormatInt(c.now().UnixMilli(), 10))
	}
	endpoint := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("apiclient: build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(InitDataHeader, c.initData)
	requestID := c.newID()
	req.Header.Set(RequestIDHeader, requestID)

	route := routeLabel(path)
	started := c.now()
	resp, err := c.client.Do(req)
	elapsed := c.now().Sub(started)
	if err != nil {
		c.metrics.observe(method, route, "error", elapsed)
		c.log.Warning("api request failed",
			logger.String("method", method),
			logger.String("path", path),
			logger.String("request_id", requestID),
			logger.Error(err),
		)
		return fmt.Errorf("apiclient: http request: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.observe(method, route, strconv.Itoa(resp.StatusCode), elapsed)

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		apiErr := newAPIError(resp.StatusCode, raw)
		c.log.Warning("api request rejected",
			logger.String("method", method),
			logger.String("path", path),
			logger.Int("status", resp.StatusCode),
			logger.String("detail", apiErr.Detail),
			logger.String("request_id", requestID),
		)
		return apiErr
	}
	c.log.Debug("api request",
		logger.String("method", method),
		logger.String("path", path),
		logger.Int("status", resp.StatusCode),
		logger.Duration("elapsed", elapsed),
		logger.String("request_id", requestID),
	)
	if target == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if raw, ok := target.(*json.RawMessage); ok {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("apiclient: read response: %w", err)
		}
		*raw = bytes.TrimSpace(data)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("apiclient: decode response: %w", err)
	}
	return nil
}

// routeLabel collapses numeric path segments so metric cardinality stays
// bounded.
func routeLabel(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		if segment == "" {
			continue
		}
		if _, err := strconv.ParseInt(segment, 10, 64); err == nil {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}
