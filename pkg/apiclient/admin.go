package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/goliatone/go-salon/components/salon"
)

var _ salon.AdminGateway = (*Client)(nil)

const edgeMessage = "Already at edge"

// kinds served by GET /api/admin/{kind}/{id}; the rest are filtered from the
// list endpoint.
var directLookup = map[salon.EntityKind]bool{
	salon.KindUsers:      true,
	salon.KindBroadcasts: true,
}

func adminPath(kind salon.EntityKind) string {
	return "/api/admin/" + string(kind)
}

func recordPath(kind salon.EntityKind, id int64) string {
	return adminPath(kind) + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) ListRecords(ctx context.Context, kind salon.EntityKind) ([]json.RawMessage, error) {
	if kind == salon.KindSettings {
		return c.settingsRecords(ctx)
	}
	var records []json.RawMessage
	if err := c.do(ctx, http.MethodGet, adminPath(kind), nil, nil, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	return records, nil
}

func (c *Client) GetRecord(ctx context.Context, kind salon.EntityKind, id int64) (json.RawMessage, error) {
	if kind == salon.KindSettings {
		return nil, fmt.Errorf("%w: get %s by id", salon.ErrUnsupportedOperation, kind)
	}
	if directLookup[kind] {
		var raw json.RawMessage
		if err := c.do(ctx, http.MethodGet, recordPath(kind, id), nil, nil, &raw); err != nil {
			return nil, err
		}
		if isEmptyJSON(raw) {
			return nil, salon.ErrNotFound
		}
		return raw, nil
	}
	records, err := c.ListRecords(ctx, kind)
	if err != nil {
		return nil, err
	}
	for _, raw := range records {
		var ident struct {
			ID int64 `json:"id"`
		}
		if err := json.Unmarshal(raw, &ident); err == nil && ident.ID == id {
			return raw, nil
		}
	}
	return nil, salon.ErrNotFound
}

func (c *Client) CreateRecord(ctx context.Context, kind salon.EntityKind, record map[string]any) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPost, adminPath(kind), nil, record, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) UpdateRecord(ctx context.Context, kind salon.EntityKind, id int64, record map[string]any) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPut, recordPath(kind, id), nil, record, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) DeleteRecord(ctx context.Context, kind salon.EntityKind, id int64) error {
	return c.do(ctx, http.MethodDelete, recordPath(kind, id), nil, nil, nil)
}

// MoveRecord reports false when the backend answers that the record already
// sits at the edge.
func (c *Client) MoveRecord(ctx context.Context, kind salon.EntityKind, id int64, direction salon.Direction) (bool, error) {
	query := url.Values{}
	query.Set("direction", string(direction))
	var resp statusResponse
	if err := c.do(ctx, http.MethodPost, recordPath(kind, id)+"/move", query, nil, &resp); err != nil {
		return false, err
	}
	return resp.Message != edgeMessage, nil
}

func (c *Client) UserTransactions(ctx context.Context, userID int64) ([]salon.Transaction, error) {
	var txs []salon.Transaction
	if err := c.do(ctx, http.MethodGet, recordPath(salon.KindUsers, userID)+"/transactions", nil, nil, &txs); err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []salon.Transaction{}
	}
	return txs, nil
}

func (c *Client) AddTransaction(ctx context.Context, userID int64, amount int, description string) (salon.Transaction, error) {
	payload := map[string]any{"amount": amount, "description": description}
	var tx salon.Transaction
	if err := c.do(ctx, http.MethodPost, recordPath(salon.KindUsers, userID)+"/transactions", nil, payload, &tx); err != nil {
		return salon.Transaction{}, err
	}
	return tx, nil
}

func (c *Client) SendBroadcast(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, recordPath(salon.KindBroadcasts, id)+"/send", nil, nil, nil)
}

// Settings returns the backend settings keyed by name.
func (c *Client) Settings(ctx context.Context) (map[string]salon.Setting, error) {
	var resp settingsResponse
	if err := c.do(ctx, http.MethodGet, "/api/settings", nil, nil, &resp); err != nil {
		return nil, err
	}
	settings := make(map[string]salon.Setting, len(resp.Settings))
	for key, setting := range resp.Settings {
		setting.Key = key
		settings[key] = setting
	}
	return settings, nil
}

func (c *Client) UpdateSetting(ctx context.Context, key string, value any) error {
	payload := map[string]any{"value": value}
	return c.do(ctx, http.MethodPut, "/api/settings/"+url.PathEscape(key), nil, payload, nil)
}

func (c *Client) settingsRecords(ctx context.Context) ([]json.RawMessage, error) {
	settings, err := c.Settings(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	records := make([]json.RawMessage, 0, len(keys))
	for _, key := range keys {
		raw, err := json.Marshal(settings[key])
		if err != nil {
			return nil, fmt.Errorf("apiclient: encode setting %s: %w", key, err)
		}
		records = append(records, raw)
	}
	return records, nil
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type settingsResponse struct {
	Success  bool                     `json:"success"`
	Settings map[string]salon.Setting `json:"settings"`
}

func isEmptyJSON(raw json.RawMessage) bool {
	switch string(raw) {
	case "", "null", "{}":
		return true
	}
	return false
}
