package salon

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// EditorOptions configures the bot-buttons Editor. Every collaborator is an
// interface so transports can swap implementations.
type EditorOptions struct {
	Gateway   ButtonGateway
	Confirmer Confirmer
	Alerter   Alerter
	Validator RecordValidator
	Telemetry Telemetry
	Locale    string
}

// Editor owns the bot-buttons layout session: the row grid, the current
// selection, the unsaved draft and the in-flight drag gesture. It is safe for
// concurrent use; network calls run outside the state lock.
type Editor struct {
	opts EditorOptions

	mu         sync.Mutex
	rows       []Row
	extraRows  []int
	selected   Selection
	draft      *BotButton
	pending    *int64
	dirtyOrder bool
	dragID     int64
	generation uint64
}

// NewEditor builds an Editor with safe defaults.
func NewEditor(opts EditorOptions) *Editor {
	if opts.Confirmer == nil {
		opts.Confirmer = autoConfirm{}
	}
	if opts.Alerter == nil {
		opts.Alerter = noopAlerter{}
	}
	if opts.Validator == nil {
		opts.Validator = NewJSONSchemaValidator()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Editor{opts: opts, rows: []Row{}}
}

// ButtonForm carries the editable fields of a button. A zero RowNumber keeps
// the current placement of the selected button or draft.
type ButtonForm struct {
	ButtonText   string      `json:"button_text"`
	ResponseText string      `json:"response_text"`
	HandlerType  HandlerType `json:"handler_type"`
	RowNumber    int         `json:"row_number"`
	OrderInRow   int         `json:"order_in_row"`
	WebAppURL    string      `json:"web_app_url"`
	IsAdminOnly  bool        `json:"is_admin_only"`
	IsActive     bool        `json:"is_active"`
}

// Load fetches the authoritative button list and rebuilds the grid. Local
// unsaved moves are discarded. A response that arrives after a newer Load
// was issued is ignored.
func (e *Editor) Load(ctx context.Context) error {
	if e.opts.Gateway == nil {
		return ErrGatewayRequired
	}
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	items, err := e.opts.Gateway.ListButtons(ctx)
	if err != nil {
		e.alert(ctx, "buttons.load_failed", err)
		return fmt.Errorf("salon: load buttons: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		e.opts.Telemetry.Record(ctx, "salon.buttons.load_stale", map[string]any{"generation": gen})
		return nil
	}
	occupied := make(map[int]struct{}, len(items))
	for _, item := range items {
		occupied[item.RowNumber] = struct{}{}
	}
	open := e.extraRows[:0:0]
	for _, number := range e.extraRows {
		if _, ok := occupied[number]; !ok {
			open = append(open, number)
		}
	}
	e.extraRows = open
	e.rows = BuildRows(items, e.extraRows)
	e.dirtyOrder = false

	if e.pending != nil {
		id := *e.pending
		e.pending = nil
		e.draft = nil
		if e.hasButton(id) {
			e.selected = SelectID(id)
		} else {
			e.selected = NoSelection
		}
	} else if e.selected.ID != 0 && !e.hasButton(e.selected.ID) {
		e.selected = NoSelection
	}

	e.opts.Telemetry.Record(ctx, "salon.buttons.load", map[string]any{
		"count": len(items),
		"rows":  len(e.rows),
	})
	return nil
}

// Select makes a persisted button the editing target and drops any draft.
func (e *Editor) Select(id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.hasButton(id) {
		return fmt.Errorf("%w: %d", ErrUnknownButton, id)
	}
	e.selected = SelectID(id)
	e.draft = nil
	return nil
}

// ClearSelection deselects everything and drops the draft.
func (e *Editor) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = NoSelection
	e.draft = nil
}

// AddRow opens an empty placeholder row below the last one and returns its
// number. Placeholder rows live only on the client until a button lands in
// them.
func (e *Editor) AddRow() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	number := maxRowNumber(e.rows) + 1
	e.extraRows = append(e.extraRows, number)
	e.rows = append(e.rows, Row{Number: number, Buttons: []BotButton{}})
	return number
}

// CreateDraft starts a new unsaved button at the end of row.
func (e *Editor) CreateDraft(row int) (BotButton, error) {
	if row < 1 {
		return BotButton{}, &ValidationError{Field: "row_number", Reason: fmt.Sprintf("must be at least 1, got %d", row)}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	order := 0
	if idx := rowIndex(e.rows, row); idx >= 0 {
		order = len(e.rows[idx].Buttons)
	}
	draft := BotButton{
		HandlerType: HandlerInfo,
		RowNumber:   row,
		OrderInRow:  order,
		IsActive:    true,
	}
	e.draft = &draft
	e.selected = SelectDraft()
	return draft, nil
}

// BeginMove records the button being dragged. Nothing moves until CommitMove.
func (e *Editor) BeginMove(id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.hasButton(id) {
		return fmt.Errorf("%w: %d", ErrUnknownButton, id)
	}
	e.dragID = id
	return nil
}

// ProposeMove reports whether dropping at row/index would be accepted.
func (e *Editor) ProposeMove(row, index int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dragID != 0 && row >= 1
}

// CommitMove drops the dragged button into row at index and marks the order
// dirty. The drag gesture ends whether or not the drop succeeds.
func (e *Editor) CommitMove(ctx context.Context, row, index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.dragID
	e.dragID = 0
	if id == 0 {
		return ErrNoActiveMove
	}
	next, err := moveButton(e.rows, id, row, index)
	if err != nil {
		return err
	}
	e.rows = next
	e.extraRows = emptyRowNumbers(next)
	e.dirtyOrder = true
	e.opts.Telemetry.Record(ctx, "salon.buttons.move", map[string]any{
		"button_id": id,
		"row":       row,
		"index":     index,
	})
	return nil
}

// CancelMove ends the drag gesture without moving anything.
func (e *Editor) CancelMove() {
	e.mu.Lock()
	e.dragID = 0
	e.mu.Unlock()
}

// SaveOrder persists the row/order of every button in one call and reloads.
// The full order is sent even when nothing was moved locally.
func (e *Editor) SaveOrder(ctx context.Context) error {
	if e.opts.Gateway == nil {
		return ErrGatewayRequired
	}
	e.mu.Lock()
	items := positionsOf(e.rows)
	e.mu.Unlock()

	if err := e.opts.Gateway.ReorderButtons(ctx, items); err != nil {
		e.alert(ctx, "buttons.order_failed", err)
		return fmt.Errorf("salon: save button order: %w", err)
	}

	e.mu.Lock()
	e.dirtyOrder = false
	e.extraRows = nil
	e.mu.Unlock()
	e.opts.Telemetry.Record(ctx, "salon.buttons.reorder", map[string]any{"count": len(items)})
	return e.Load(ctx)
}

// SaveButton validates the form against the selected button or draft, then
// creates or updates it. The saved id becomes the selection after the
// follow-up reload. When an update changes row or order the button is placed
// like a drop and the resulting order of every button is saved too.
func (e *Editor) SaveButton(ctx context.Context, form ButtonForm) (BotButton, error) {
	if e.opts.Gateway == nil {
		return BotButton{}, ErrGatewayRequired
	}
	e.mu.Lock()
	sel := e.selected
	var current BotButton
	switch {
	case sel.Draft && e.draft != nil:
		current = *e.draft
	case sel.ID != 0:
		r, p := locateButton(e.rows, sel.ID)
		if r < 0 {
			e.mu.Unlock()
			return BotButton{}, fmt.Errorf("%w: %d", ErrUnknownButton, sel.ID)
		}
		current = e.rows[r].Buttons[p]
	default:
		e.mu.Unlock()
		return BotButton{}, ErrNoSelection
	}
	button := form.apply(current)
	err := checkButtonFields(button)
	if err == nil {
		err = e.checkDuplicateText(button)
	}
	var placement []ButtonPosition
	if err == nil && !button.IsDraft() && button.RowNumber >= 1 && button.OrderInRow >= 0 &&
		(button.RowNumber != current.RowNumber || button.OrderInRow != current.OrderInRow) {
		placement, button, err = e.planPlacement(button)
	}
	e.mu.Unlock()
	if err != nil {
		e.alert(ctx, "buttons.invalid", err)
		return BotButton{}, err
	}
	if err := e.opts.Validator.Validate(KindBotButtons, buttonRecord(button)); err != nil {
		e.alert(ctx, "buttons.invalid", err)
		return BotButton{}, err
	}

	var saved BotButton
	if button.IsDraft() {
		saved, err = e.opts.Gateway.CreateButton(ctx, button)
	} else {
		saved, err = e.opts.Gateway.UpdateButton(ctx, button.ID, button)
	}
	if err != nil {
		e.alert(ctx, "buttons.save_failed", err)
		return BotButton{}, fmt.Errorf("salon: save button: %w", err)
	}
	if saved.ID == 0 {
		saved.ID = button.ID
	}
	var orderErr error
	if len(placement) > 0 {
		if err := e.opts.Gateway.ReorderButtons(ctx, placement); err != nil {
			e.alert(ctx, "buttons.order_failed", err)
			orderErr = fmt.Errorf("salon: save button order: %w", err)
		}
	}

	e.mu.Lock()
	if saved.ID != 0 {
		id := saved.ID
		e.pending = &id
	}
	if sel.Draft {
		e.draft = nil
	}
	e.mu.Unlock()
	e.opts.Telemetry.Record(ctx, "salon.buttons.save", map[string]any{
		"button_id": saved.ID,
		"created":   button.IsDraft(),
	})
	if err := e.Load(ctx); err != nil {
		return saved, err
	}
	return saved, orderErr
}

// planPlacement moves a persisted button to the row and order of its form and
// returns the positions of every button after the move. The order is clamped
// like a drop. Callers hold e.mu.
func (e *Editor) planPlacement(button BotButton) ([]ButtonPosition, BotButton, error) {
	next, err := moveButton(e.rows, button.ID, button.RowNumber, button.OrderInRow)
	if err != nil {
		return nil, button, err
	}
	r, p := locateButton(next, button.ID)
	button.RowNumber = next[r].Number
	button.OrderInRow = p
	return positionsOf(next), button, nil
}

// DeleteButton removes the selected persisted button after confirmation.
// Without a persisted selection, or when the operator declines, it is a no-op.
func (e *Editor) DeleteButton(ctx context.Context) error {
	if e.opts.Gateway == nil {
		return ErrGatewayRequired
	}
	e.mu.Lock()
	sel := e.selected
	e.mu.Unlock()
	if sel.Draft || sel.ID == 0 {
		return nil
	}
	if !e.opts.Confirmer.Confirm(ctx, Message("buttons.confirm_delete", e.opts.Locale)) {
		return nil
	}
	if err := e.opts.Gateway.DeleteButton(ctx, sel.ID); err != nil {
		e.alert(ctx, "buttons.delete_failed", err)
		return fmt.Errorf("salon: delete button %d: %w", sel.ID, err)
	}
	e.mu.Lock()
	if e.selected == sel {
		e.selected = NoSelection
	}
	e.pending = nil
	e.mu.Unlock()
	e.opts.Telemetry.Record(ctx, "salon.buttons.delete", map[string]any{"button_id": sel.ID})
	return e.Load(ctx)
}

// State returns a snapshot of the editor.
func (e *Editor) State() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	state := EditorState{
		Selected:   e.selected,
		Rows:       cloneRows(e.rows),
		ExtraRows:  append([]int{}, e.extraRows...),
		DirtyOrder: e.dirtyOrder,
		DragID:     e.dragID,
	}
	if e.selected.Draft && e.draft != nil {
		draft := *e.draft
		state.Draft = &draft
	}
	return state
}

// Selected returns the button being edited, draft included.
func (e *Editor) Selected() (BotButton, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.selected.Draft && e.draft != nil {
		return *e.draft, true
	}
	if e.selected.ID != 0 {
		if r, p := locateButton(e.rows, e.selected.ID); r >= 0 {
			return e.rows[r].Buttons[p], true
		}
	}
	return BotButton{}, false
}

// Buttons returns every known button in display order.
func (e *Editor) Buttons() []BotButton {
	e.mu.Lock()
	defer e.mu.Unlock()
	return flattenRows(e.rows)
}

func (e *Editor) hasButton(id int64) bool {
	r, _ := locateButton(e.rows, id)
	return r >= 0
}

func (e *Editor) checkDuplicateText(button BotButton) error {
	for _, other := range flattenRows(e.rows) {
		if other.ID == button.ID {
			continue
		}
		if strings.TrimSpace(other.ButtonText) == button.ButtonText {
			return fmt.Errorf("%w: %q", ErrDuplicateButtonText, button.ButtonText)
		}
	}
	return nil
}

func (e *Editor) alert(ctx context.Context, key string, err error) {
	e.opts.Alerter.Alert(ctx, fmt.Sprintf("%s: %v", Message(key, e.opts.Locale), err))
}

func (f ButtonForm) apply(current BotButton) BotButton {
	out := current
	out.ButtonText = strings.TrimSpace(f.ButtonText)
	out.ResponseText = strings.TrimSpace(f.ResponseText)
	out.HandlerType = f.HandlerType
	if out.HandlerType == "" {
		out.HandlerType = HandlerInfo
	}
	if f.RowNumber != 0 {
		out.RowNumber = f.RowNumber
		out.OrderInRow = f.OrderInRow
	}
	out.WebAppURL = nil
	if url := strings.TrimSpace(f.WebAppURL); url != "" {
		out.WebAppURL = &url
	}
	out.IsAdminOnly = f.IsAdminOnly
	out.IsActive = f.IsActive
	return out
}

func checkButtonFields(button BotButton) error {
	if button.ButtonText == "" {
		return &ValidationError{Field: "button_text", Reason: "is required"}
	}
	if button.ResponseText == "" {
		return &ValidationError{Field: "response_text", Reason: "is required"}
	}
	return nil
}

func buttonRecord(button BotButton) map[string]any {
	record := map[string]any{
		"button_text":   button.ButtonText,
		"response_text": button.ResponseText,
		"handler_type":  string(button.HandlerType),
		"row_number":    button.RowNumber,
		"order_in_row":  button.OrderInRow,
		"is_admin_only": button.IsAdminOnly,
		"is_active":     button.IsActive,
		"web_app_url":   nil,
	}
	if button.WebAppURL != nil {
		record["web_app_url"] = *button.WebAppURL
	}
	return record
}
