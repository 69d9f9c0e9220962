package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-salon/components/salon"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Header http.Header
	Body   []byte
}

type fakeBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (f *fakeBackend) record(r *http.Request) recordedRequest {
	body, _ := io.ReadAll(r.Body)
	req := recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	}
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return req
}

func (f *fakeBackend) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestClient(t *testing.T, mux *http.ServeMux) (*Client, *fakeBackend, *prometheus.Registry) {
	t.Helper()
	backend := &fakeBackend{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := backend.record(r)
		r.Body = io.NopCloser(bytes.NewReader(req.Body))
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	registry := prometheus.NewRegistry()
	client, err := New(Config{
		BaseURL:    server.URL + "/",
		InitData:   "query_id=1&hash=abc",
		Registerer: registry,
	})
	require.NoError(t, err)
	client.now = func() time.Time { return time.UnixMilli(1700000000000) }
	client.newID = func() string { return "req-1" }
	return client, backend, registry
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "  "})
	assert.Error(t, err)
}

func TestClientSendsInitDataAndCacheBuster(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/admin/bot-buttons", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []salon.BotButton{
			{ID: 1, ButtonText: "Запись", RowNumber: 1, IsActive: true},
		})
	})
	client, backend, registry := newTestClient(t, mux)

	buttons, err := client.ListButtons(context.Background())
	require.NoError(t, err)
	require.Len(t, buttons, 1)
	assert.Equal(t, "Запись", buttons[0].ButtonText)

	req := backend.last()
	assert.Equal(t, "query_id=1&hash=abc", req.Header.Get(InitDataHeader))
	assert.Equal(t, "req-1", req.Header.Get(RequestIDHeader))
	assert.Equal(t, []string{"1700000000000"}, req.Query["_t"])

	assert.Equal(t, 1.0, testutil.ToFloat64(client.metrics.requests.WithLabelValues("GET", "/api/admin/bot-buttons", "200")))
	count, err := testutil.GatherAndCount(registry, "salon_api_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestClientButtonWrites(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/admin/bot-buttons", func(w http.ResponseWriter, r *http.Request) {
		var button salon.BotButton
		_ = json.NewDecoder(r.Body).Decode(&button)
		button.ID = 42
		writeJSON(w, http.StatusOK, button)
	})
	mux.HandleFunc("PUT /api/admin/bot-buttons/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	mux.HandleFunc("DELETE /api/admin/bot-buttons/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /api/admin/bot-buttons/reorder", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	client, backend, _ := newTestClient(t, mux)
	ctx := context.Background()

	created, err := client.CreateButton(ctx, salon.BotButton{ID: 9, ButtonText: "Новая", RowNumber: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)
	create := backend.last()
	assert.NotContains(t, string(create.Body), `"id"`)
	assert.Empty(t, create.Query["_t"])
	assert.Equal(t, "application/json", create.Header.Get("Content-Type"))

	updated, err := client.UpdateButton(ctx, 7, salon.BotButton{ButtonText: "Текст"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), updated.ID)
	assert.Equal(t, "/api/admin/bot-buttons/7", backend.last().Path)

	require.NoError(t, client.DeleteButton(ctx, 7))
	assert.Equal(t, http.MethodDelete, backend.last().Method)

	require.NoError(t, client.ReorderButtons(ctx, []salon.ButtonPosition{
		{ID: 1, RowNumber: 1, OrderInRow: 0},
		{ID: 2, RowNumber: 2, OrderInRow: 0},
	}))
	var payload struct {
		Items []salon.ButtonPosition `json:"items"`
	}
	require.NoError(t, json.Unmarshal(backend.last().Body, &payload))
	assert.Len(t, payload.Items, 2)
}

func TestClientParsesErrorDetail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/admin/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "User not found"})
	})
	mux.HandleFunc("POST /api/admin/broadcasts/{id}/send", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Broadcast is already completed"})
	})
	mux.HandleFunc("POST /api/admin/masters", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": []map[string]string{{"msg": "field required"}}})
	})
	mux.HandleFunc("GET /api/app/content", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})
	client, _, _ := newTestClient(t, mux)
	ctx := context.Background()

	_, err := client.GetRecord(ctx, salon.KindUsers, 5)
	assert.ErrorIs(t, err, salon.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, StatusOf(err))

	err = client.SendBroadcast(ctx, 3)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Broadcast is already completed", apiErr.Detail)
	assert.Contains(t, err.Error(), "remote error 400")

	_, err = client.CreateRecord(ctx, salon.KindMasters, map[string]any{})
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, apiErr.Detail, "field required")

	_, err = client.FetchContent(ctx)
	require.True(t, errors.As(err, &apiErr))
	assert.Empty(t, apiErr.Detail)
	assert.Equal(t, "upstream down", apiErr.Body)
}

func TestClientTransportFailure(t *testing.T) {
	client, err := New(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
	require.NoError(t, err)
	_, err = client.ListButtons(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apiclient: http request")
	assert.Zero(t, StatusOf(err))
}

func TestClientContentAndProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/app/content", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"services":    []map[string]any{{"id": 1, "title": "Стрижка", "price": 1200}},
			"masters":     nil,
			"promotions":  nil,
			"booking_url": "https://book.example",
		})
	})
	mux.HandleFunc("GET /api/app/profile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"user":     map[string]any{"id": 1, "name": "Мария", "balance": 300},
			"is_admin": true,
			"history":  nil,
		})
	})
	client, backend, _ := newTestClient(t, mux)
	ctx := context.Background()

	content, err := client.FetchContent(ctx)
	require.NoError(t, err)
	assert.Len(t, content.Services, 1)
	assert.NotNil(t, content.Masters)
	assert.Equal(t, "https://book.example", content.BookingURL)

	profile, err := client.FetchProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 300, profile.User.Balance)
	assert.True(t, profile.IsAdmin)
	assert.NotNil(t, profile.History)
	assert.NotNil(t, profile.Visits)

	calls := len(backend.requests)
	_, err = client.WithInitData("").FetchProfile(ctx)
	assert.ErrorIs(t, err, salon.ErrNoInitData)
	assert.Len(t, backend.requests, calls)
	assert.Equal(t, "query_id=1&hash=abc", client.InitData())
}

func TestClientAdminRecords(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/admin/services", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "title": "Стрижка"},
			{"id": 2, "title": "Маникюр"},
		})
	})
	mux.HandleFunc("PUT /api/admin/services/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": 2, "title": "Педикюр"})
	})
	mux.HandleFunc("POST /api/admin/services/{id}/move", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "1" {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": edgeMessage})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	client, backend, _ := newTestClient(t, mux)
	ctx := context.Background()

	records, err := client.ListRecords(ctx, salon.KindServices)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	raw, err := client.GetRecord(ctx, salon.KindServices, 2)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Маникюр")
	assert.Equal(t, "/api/admin/services", backend.last().Path)

	_, err = client.GetRecord(ctx, salon.KindServices, 99)
	assert.ErrorIs(t, err, salon.ErrNotFound)

	raw, err = client.UpdateRecord(ctx, salon.KindServices, 2, map[string]any{"title": "Педикюр"})
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Педикюр")

	moved, err := client.MoveRecord(ctx, salon.KindServices, 2, salon.MoveUp)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, []string{"up"}, backend.last().Query["direction"])

	moved, err = client.MoveRecord(ctx, salon.KindServices, 1, salon.MoveUp)
	require.NoError(t, err)
	assert.False(t, moved)
}

func TestClientSettingsAndTransactions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/settings", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"settings": map[string]any{
				"points_ttl_days": map[string]any{"value": 90, "type": "number", "description": "TTL"},
				"bot_enabled":     map[string]any{"value": true, "type": "boolean"},
			},
		})
	})
	mux.HandleFunc("PUT /api/settings/{key}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})
	mux.HandleFunc("GET /api/admin/users/{id}/transactions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, nil)
	})
	mux.HandleFunc("POST /api/admin/users/{id}/transactions", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, map[string]any{
			"id": 5, "user_id": 9, "amount": body["amount"], "transaction_type": "earn", "description": body["description"],
		})
	})
	client, backend, _ := newTestClient(t, mux)
	ctx := context.Background()

	settings, err := client.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "points_ttl_days", settings["points_ttl_days"].Key)
	assert.Equal(t, salon.SettingBoolean, settings["bot_enabled"].Type)

	records, err := client.ListRecords(ctx, salon.KindSettings)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Contains(t, string(records[0]), `"key":"bot_enabled"`)

	require.NoError(t, client.UpdateSetting(ctx, "points_ttl_days", 120))
	assert.JSONEq(t, `{"value":120}`, string(backend.last().Body))

	_, err = client.GetRecord(ctx, salon.KindSettings, 1)
	assert.ErrorIs(t, err, salon.ErrUnsupportedOperation)

	txs, err := client.UserTransactions(ctx, 9)
	require.NoError(t, err)
	assert.NotNil(t, txs)
	assert.Empty(t, txs)

	tx, err := client.AddTransaction(ctx, 9, 50, "Бонус")
	require.NoError(t, err)
	assert.Equal(t, 50, tx.Amount)
	assert.Equal(t, "Бонус", tx.Description)
}

func TestClientUpload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/admin/upload", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
			return
		}
		defer file.Close()
		if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Only image files are allowed"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"url":      "https://cdn.example/" + r.FormValue("folder") + "/" + header.Filename,
			"filename": header.Filename,
			"size":     header.Size,
		})
	})
	client, backend, _ := newTestClient(t, mux)
	ctx := context.Background()

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	url, err := client.Upload(ctx, "masters", "anna.png", bytes.NewReader(png))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/masters/anna.png", url)

	url, err = client.Upload(ctx, "", "../x.png", bytes.NewReader(png))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/images/x.png", url)

	calls := len(backend.requests)
	_, err = client.Upload(ctx, "masters", "notes.txt", strings.NewReader("plain text"))
	assert.True(t, salon.IsValidation(err))
	_, err = client.Upload(ctx, "masters", "empty.png", strings.NewReader(""))
	assert.True(t, salon.IsValidation(err))
	_, err = client.Upload(ctx, "masters", "huge.png", io.MultiReader(bytes.NewReader(png), bytes.NewReader(make([]byte, MaxUploadSize))))
	assert.True(t, salon.IsValidation(err))
	assert.Len(t, backend.requests, calls)
}

func TestMetricsShareRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := New(Config{BaseURL: "http://a", Registerer: registry})
	require.NoError(t, err)
	_, err = New(Config{BaseURL: "http://b", Registerer: registry})
	require.NoError(t, err)
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/api/admin/users/:id/transactions", routeLabel("/api/admin/users/12/transactions"))
	assert.Equal(t, "/api/settings/points_ttl_days", routeLabel("/api/settings/points_ttl_days"))
}

func TestMockClientRoundTrip(t *testing.T) {
	mock := NewMockClient(DemoData())
	ctx := context.Background()

	created, err := mock.CreateButton(ctx, salon.BotButton{ButtonText: "Новая", RowNumber: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(4), created.ID)

	require.NoError(t, mock.ReorderButtons(ctx, []salon.ButtonPosition{{ID: 4, RowNumber: 1, OrderInRow: 0}, {ID: 1, RowNumber: 1, OrderInRow: 1}}))
	buttons, err := mock.ListButtons(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), buttons[0].ID)

	_, err = mock.UpdateButton(ctx, 99, salon.BotButton{})
	assert.ErrorIs(t, err, salon.ErrNotFound)
	require.NoError(t, mock.DeleteButton(ctx, 4))
	buttons, _ = mock.ListButtons(ctx)
	assert.Len(t, buttons, 3)

	content, err := mock.FetchContent(ctx)
	require.NoError(t, err)
	content.Services[0].Title = "changed"
	again, _ := mock.FetchContent(ctx)
	assert.Equal(t, "Стрижка", again.Services[0].Title)
}
