package salon

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"sync"
)

var errBackend = errors.New("backend unavailable")

// stubButtonGateway keeps buttons in memory and counts every call.
type stubButtonGateway struct {
	mu      sync.Mutex
	buttons []BotButton
	nextID  int64

	listCalls    int
	createCalls  int
	updateCalls  int
	deleteCalls  int
	reorderCalls int

	listErr    error
	createErr  error
	updateErr  error
	deleteErr  error
	reorderErr error

	lastReorder []ButtonPosition
	listHook    func(call int)
}

func newStubButtonGateway(buttons ...BotButton) *stubButtonGateway {
	gw := &stubButtonGateway{buttons: append([]BotButton{}, buttons...), nextID: 100}
	return gw
}

func (s *stubButtonGateway) ListButtons(context.Context) ([]BotButton, error) {
	s.mu.Lock()
	s.listCalls++
	call := s.listCalls
	hook := s.listHook
	snapshot := append([]BotButton{}, s.buttons...)
	err := s.listErr
	s.mu.Unlock()
	if hook != nil {
		hook(call)
	}
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *stubButtonGateway) CreateButton(_ context.Context, button BotButton) (BotButton, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCalls++
	if s.createErr != nil {
		return BotButton{}, s.createErr
	}
	s.nextID++
	button.ID = s.nextID
	s.buttons = append(s.buttons, button)
	return button, nil
}

func (s *stubButtonGateway) UpdateButton(_ context.Context, id int64, button BotButton) (BotButton, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateCalls++
	if s.updateErr != nil {
		return BotButton{}, s.updateErr
	}
	for i := range s.buttons {
		if s.buttons[i].ID == id {
			button.ID = id
			s.buttons[i] = button
			return button, nil
		}
	}
	return BotButton{}, ErrNotFound
}

func (s *stubButtonGateway) DeleteButton(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls++
	if s.deleteErr != nil {
		return s.deleteErr
	}
	kept := s.buttons[:0]
	for _, b := range s.buttons {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	s.buttons = kept
	return nil
}

func (s *stubButtonGateway) ReorderButtons(_ context.Context, items []ButtonPosition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reorderCalls++
	s.lastReorder = append([]ButtonPosition{}, items...)
	if s.reorderErr != nil {
		return s.reorderErr
	}
	for _, item := range items {
		for i := range s.buttons {
			if s.buttons[i].ID == item.ID {
				s.buttons[i].RowNumber = item.RowNumber
				s.buttons[i].OrderInRow = item.OrderInRow
			}
		}
	}
	return nil
}

func (s *stubButtonGateway) networkCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createCalls + s.updateCalls + s.deleteCalls + s.reorderCalls
}

type stubConfirmer struct {
	answer  bool
	prompts []string
}

func (s *stubConfirmer) Confirm(_ context.Context, prompt string) bool {
	s.prompts = append(s.prompts, prompt)
	return s.answer
}

type recordingAlerter struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingAlerter) Alert(_ context.Context, message string) {
	r.mu.Lock()
	r.messages = append(r.messages, message)
	r.mu.Unlock()
}

func (r *recordingAlerter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

type recordingTelemetry struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *recordingTelemetry) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

// stubAdminGateway serves canned records per kind.
type stubAdminGateway struct {
	records  map[EntityKind][]json.RawMessage
	settings map[string]Setting
	err      error

	created   []map[string]any
	updated   map[int64]map[string]any
	deleted   []int64
	moved     []Direction
	sent      []int64
	txAdded   []Transaction
	saved     map[string]any
	uploads   []string
	uploadURL string
	edgeID    int64
}

func newStubAdminGateway() *stubAdminGateway {
	return &stubAdminGateway{
		records:  map[EntityKind][]json.RawMessage{},
		settings: map[string]Setting{},
		updated:  map[int64]map[string]any{},
		saved:    map[string]any{},
	}
}

func (s *stubAdminGateway) ListRecords(_ context.Context, kind EntityKind) ([]json.RawMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.records[kind], nil
}

func (s *stubAdminGateway) GetRecord(_ context.Context, kind EntityKind, id int64) (json.RawMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, raw := range s.records[kind] {
		var ident struct {
			ID int64 `json:"id"`
		}
		if json.Unmarshal(raw, &ident) == nil && ident.ID == id {
			return raw, nil
		}
	}
	return nil, ErrNotFound
}

func (s *stubAdminGateway) CreateRecord(_ context.Context, _ EntityKind, record map[string]any) (json.RawMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = append(s.created, record)
	withID := map[string]any{"id": len(s.created)}
	for k, v := range record {
		withID[k] = v
	}
	return json.Marshal(withID)
}

func (s *stubAdminGateway) UpdateRecord(_ context.Context, _ EntityKind, id int64, record map[string]any) (json.RawMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.updated[id] = record
	return json.RawMessage(`{}`), nil
}

func (s *stubAdminGateway) DeleteRecord(_ context.Context, _ EntityKind, id int64) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubAdminGateway) MoveRecord(_ context.Context, _ EntityKind, id int64, direction Direction) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	s.moved = append(s.moved, direction)
	return id != s.edgeID, nil
}

func (s *stubAdminGateway) UserTransactions(context.Context, int64) ([]Transaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	return append([]Transaction{}, s.txAdded...), nil
}

func (s *stubAdminGateway) AddTransaction(_ context.Context, userID int64, amount int, description string) (Transaction, error) {
	if s.err != nil {
		return Transaction{}, s.err
	}
	typ := "spend"
	if amount > 0 {
		typ = "earn"
	}
	tx := Transaction{ID: int64(len(s.txAdded) + 1), UserID: userID, Amount: amount, Description: description, TransactionType: typ}
	s.txAdded = append(s.txAdded, tx)
	return tx, nil
}

func (s *stubAdminGateway) SendBroadcast(_ context.Context, id int64) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, id)
	return nil
}

func (s *stubAdminGateway) Settings(context.Context) (map[string]Setting, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.settings, nil
}

func (s *stubAdminGateway) UpdateSetting(_ context.Context, key string, value any) error {
	if s.err != nil {
		return s.err
	}
	s.saved[key] = value
	return nil
}

func (s *stubAdminGateway) Upload(_ context.Context, folder, filename string, body io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	s.uploads = append(s.uploads, folder+"/"+filename)
	if s.uploadURL != "" {
		return s.uploadURL, nil
	}
	return "/uploads/" + folder + "/" + filename, nil
}

func rowNumbers(rows []Row) []int {
	out := make([]int, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Number)
	}
	return out
}

func rowIDs(row Row) []int64 {
	out := make([]int64, 0, len(row.Buttons))
	for _, b := range row.Buttons {
		out = append(out, b.ID)
	}
	return out
}

func sortedPositions(items []ButtonPosition) []ButtonPosition {
	out := append([]ButtonPosition{}, items...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }
