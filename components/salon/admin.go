package salon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// Direction moves an ordered record one slot up or down.
type Direction string

const (
	MoveUp   Direction = "up"
	MoveDown Direction = "down"
)

// ParseDirection validates a move direction.
func ParseDirection(raw string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(raw))); d {
	case MoveUp, MoveDown:
		return d, nil
	}
	return "", &ValidationError{Field: "direction", Reason: fmt.Sprintf("must be up or down, got %q", raw)}
}

// AdminGateway is the REST surface of the admin panel.
type AdminGateway interface {
	ListRecords(ctx context.Context, kind EntityKind) ([]json.RawMessage, error)
	GetRecord(ctx context.Context, kind EntityKind, id int64) (json.RawMessage, error)
	CreateRecord(ctx context.Context, kind EntityKind, record map[string]any) (json.RawMessage, error)
	UpdateRecord(ctx context.Context, kind EntityKind, id int64, record map[string]any) (json.RawMessage, error)
	DeleteRecord(ctx context.Context, kind EntityKind, id int64) error
	MoveRecord(ctx context.Context, kind EntityKind, id int64, direction Direction) (bool, error)
	UserTransactions(ctx context.Context, userID int64) ([]Transaction, error)
	AddTransaction(ctx context.Context, userID int64, amount int, description string) (Transaction, error)
	SendBroadcast(ctx context.Context, id int64) error
	Settings(ctx context.Context) (map[string]Setting, error)
	UpdateSetting(ctx context.Context, key string, value any) error
	Upload(ctx context.Context, folder, filename string, body io.Reader) (string, error)
}

// AdminOptions configures the admin controller.
type AdminOptions struct {
	Gateway   AdminGateway
	Confirmer Confirmer
	Alerter   Alerter
	Validator RecordValidator
	Telemetry Telemetry
	Locale    string
	// Location is the zone scheduled broadcast dates are typed in.
	Location *time.Location
}

// Admin drives list/detail/edit/delete flows for every entity kind.
type Admin struct {
	opts AdminOptions
}

// NewAdmin builds an admin controller with safe defaults.
func NewAdmin(opts AdminOptions) *Admin {
	if opts.Confirmer == nil {
		opts.Confirmer = autoConfirm{}
	}
	if opts.Alerter == nil {
		opts.Alerter = noopAlerter{}
	}
	if opts.Validator == nil {
		opts.Validator = NewJSONSchemaValidator()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Admin{opts: opts}
}

// List returns every record of kind.
func (a *Admin) List(ctx context.Context, kind EntityKind) ([]Record, error) {
	if _, err := SpecFor(kind); err != nil {
		return nil, err
	}
	if kind == KindSettings {
		settings, err := a.Settings(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]Record, 0, len(settings))
		for _, s := range settings {
			out = append(out, s)
		}
		return out, nil
	}
	gw, err := a.gateway()
	if err != nil {
		return nil, err
	}
	raws, err := gw.ListRecords(ctx, kind)
	if err != nil {
		a.alert(ctx, "admin.load_failed", err)
		return nil, fmt.Errorf("salon: list %s: %w", kind, err)
	}
	return DecodeRecords(kind, raws)
}

// Get returns one record of kind.
func (a *Admin) Get(ctx context.Context, kind EntityKind, id int64) (Record, error) {
	if _, err := SpecFor(kind); err != nil {
		return nil, err
	}
	gw, err := a.gateway()
	if err != nil {
		return nil, err
	}
	raw, err := gw.GetRecord(ctx, kind, id)
	if err != nil {
		a.alert(ctx, "admin.load_failed", err)
		return nil, fmt.Errorf("salon: get %s %d: %w", kind, id, err)
	}
	return DecodeRecord(kind, raw)
}

// Save normalizes and validates fields, then creates the record when id is
// zero or updates it otherwise.
func (a *Admin) Save(ctx context.Context, kind EntityKind, id int64, fields map[string]any) (Record, error) {
	spec, err := SpecFor(kind)
	if err != nil {
		return nil, err
	}
	creating := id == 0
	if (creating && !spec.Capabilities.Create) || (!creating && !spec.Capabilities.Update) {
		return nil, fmt.Errorf("%w: save %s", ErrUnsupportedOperation, kind)
	}
	gw, err := a.gateway()
	if err != nil {
		return nil, err
	}
	record, err := NormalizeForm(kind, fields, a.opts.Location)
	if err == nil {
		if creating {
			err = a.opts.Validator.Validate(kind, record)
		} else {
			err = a.opts.Validator.ValidatePartial(kind, record)
		}
	}
	if err != nil {
		a.alert(ctx, "admin.save_failed", err)
		return nil, err
	}

	var raw json.RawMessage
	if creating {
		raw, err = gw.CreateRecord(ctx, kind, record)
	} else {
		raw, err = gw.UpdateRecord(ctx, kind, id, record)
	}
	if err != nil {
		a.alert(ctx, "admin.save_failed", err)
		return nil, fmt.Errorf("salon: save %s: %w", kind, err)
	}
	a.opts.Telemetry.Record(ctx, "salon.admin.save", map[string]any{
		"kind":    string(kind),
		"id":      id,
		"created": creating,
	})
	if len(raw) == 0 || string(raw) == "{}" || string(raw) == "null" {
		return nil, nil
	}
	return DecodeRecord(kind, raw)
}

// Delete removes a record after confirmation. Declining is a no-op.
func (a *Admin) Delete(ctx context.Context, kind EntityKind, id int64) error {
	spec, err := SpecFor(kind)
	if err != nil {
		return err
	}
	if !spec.Capabilities.Delete {
		return fmt.Errorf("%w: delete %s", ErrUnsupportedOperation, kind)
	}
	gw, err := a.gateway()
	if err != nil {
		return err
	}
	if !a.opts.Confirmer.Confirm(ctx, Message("admin.confirm_delete", a.opts.Locale)) {
		return nil
	}
	if err := gw.DeleteRecord(ctx, kind, id); err != nil {
		a.alert(ctx, "admin.delete_failed", err)
		return fmt.Errorf("salon: delete %s %d: %w", kind, id, err)
	}
	a.opts.Telemetry.Record(ctx, "salon.admin.delete", map[string]any{"kind": string(kind), "id": id})
	return nil
}

// Move shifts an ordered record one slot. Only masters, services and
// promotions are ordered. It reports false when the record already sits at
// the edge.
func (a *Admin) Move(ctx context.Context, kind EntityKind, id int64, direction Direction) (bool, error) {
	spec, err := SpecFor(kind)
	if err != nil {
		return false, err
	}
	if !spec.Capabilities.Move {
		return false, fmt.Errorf("%w: move %s", ErrUnsupportedOperation, kind)
	}
	if _, err := ParseDirection(string(direction)); err != nil {
		return false, err
	}
	gw, err := a.gateway()
	if err != nil {
		return false, err
	}
	moved, err := gw.MoveRecord(ctx, kind, id, direction)
	if err != nil {
		a.alert(ctx, "admin.move_failed", err)
		return false, fmt.Errorf("salon: move %s %d %s: %w", kind, id, direction, err)
	}
	a.opts.Telemetry.Record(ctx, "salon.admin.move", map[string]any{
		"kind":      string(kind),
		"id":        id,
		"direction": string(direction),
		"moved":     moved,
	})
	return moved, nil
}

// UserTransactions lists the latest ledger entries of a user.
func (a *Admin) UserTransactions(ctx context.Context, userID int64) ([]Transaction, error) {
	gw, err := a.gateway()
	if err != nil {
		return nil, err
	}
	txs, err := gw.UserTransactions(ctx, userID)
	if err != nil {
		a.alert(ctx, "admin.load_failed", err)
		return nil, fmt.Errorf("salon: user %d transactions: %w", userID, err)
	}
	return txs, nil
}

// AddTransaction adjusts a user's balance by amount.
func (a *Admin) AddTransaction(ctx context.Context, userID int64, amount int, description string) (Transaction, error) {
	if amount == 0 {
		return Transaction{}, &ValidationError{Field: "amount", Reason: "must not be zero"}
	}
	gw, err := a.gateway()
	if err != nil {
		return Transaction{}, err
	}
	description = strings.TrimSpace(description)
	if description == "" {
		description = Message("transaction.manual", "")
	}
	tx, err := gw.AddTransaction(ctx, userID, amount, description)
	if err != nil {
		a.alert(ctx, "admin.save_failed", err)
		return Transaction{}, fmt.Errorf("salon: add transaction for user %d: %w", userID, err)
	}
	a.opts.Telemetry.Record(ctx, "salon.admin.transaction", map[string]any{"user_id": userID, "amount": amount})
	return tx, nil
}

// ViewBroadcast loads one broadcast with its delivery counters.
func (a *Admin) ViewBroadcast(ctx context.Context, id int64) (Broadcast, error) {
	record, err := a.Get(ctx, KindBroadcasts, id)
	if err != nil {
		return Broadcast{}, err
	}
	b, _ := record.(Broadcast)
	return b, nil
}

// SendBroadcast starts delivery after confirmation. It reports whether the
// send was issued.
func (a *Admin) SendBroadcast(ctx context.Context, id int64) (bool, error) {
	gw, err := a.gateway()
	if err != nil {
		return false, err
	}
	if !a.opts.Confirmer.Confirm(ctx, Message("broadcast.confirm_send", a.opts.Locale)) {
		return false, nil
	}
	if err := gw.SendBroadcast(ctx, id); err != nil {
		a.alert(ctx, "broadcast.send_failed", err)
		return false, fmt.Errorf("salon: send broadcast %d: %w", id, err)
	}
	a.opts.Telemetry.Record(ctx, "salon.admin.broadcast_send", map[string]any{"id": id})
	return true, nil
}

// DeleteBroadcast removes a broadcast after confirmation.
func (a *Admin) DeleteBroadcast(ctx context.Context, id int64) error {
	return a.Delete(ctx, KindBroadcasts, id)
}

// Settings returns every setting sorted by key.
func (a *Admin) Settings(ctx context.Context) ([]Setting, error) {
	gw, err := a.gateway()
	if err != nil {
		return nil, err
	}
	byKey, err := gw.Settings(ctx)
	if err != nil {
		a.alert(ctx, "admin.load_failed", err)
		return nil, fmt.Errorf("salon: load settings: %w", err)
	}
	out := make([]Setting, 0, len(byKey))
	for key, s := range byKey {
		s.Key = key
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// UpdateSetting coerces raw to the setting type and saves it. An empty typ
// is looked up from the current settings.
func (a *Admin) UpdateSetting(ctx context.Context, key string, typ SettingType, raw any) (any, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, &ValidationError{Field: "key", Reason: "is required"}
	}
	gw, err := a.gateway()
	if err != nil {
		return nil, err
	}
	if typ == "" {
		settings, err := a.Settings(ctx)
		if err != nil {
			return nil, err
		}
		for _, s := range settings {
			if s.Key == key {
				typ = s.Type
				break
			}
		}
		if typ == "" {
			return nil, fmt.Errorf("%w: setting %q", ErrNotFound, key)
		}
	}
	value, err := CoerceSetting(typ, raw)
	if err != nil {
		a.alert(ctx, "admin.save_failed", err)
		return nil, err
	}
	if err := gw.UpdateSetting(ctx, key, value); err != nil {
		a.alert(ctx, "admin.save_failed", err)
		return nil, fmt.Errorf("salon: update setting %s: %w", key, err)
	}
	a.opts.Telemetry.Record(ctx, "salon.admin.setting", map[string]any{"key": key, "type": string(typ)})
	return value, nil
}

// Upload stores an image under the folder matching prefix and returns its
// public URL.
func (a *Admin) Upload(ctx context.Context, prefix, filename string, body io.Reader) (string, error) {
	gw, err := a.gateway()
	if err != nil {
		return "", err
	}
	folder := UploadFolder(prefix)
	url, err := gw.Upload(ctx, folder, filename, body)
	if err != nil {
		a.alert(ctx, "admin.upload_failed", err)
		return "", fmt.Errorf("salon: upload %s: %w", filename, err)
	}
	a.opts.Telemetry.Record(ctx, "salon.admin.upload", map[string]any{"folder": folder})
	return url, nil
}

func (a *Admin) gateway() (AdminGateway, error) {
	if a.opts.Gateway == nil {
		return nil, ErrGatewayRequired
	}
	return a.opts.Gateway, nil
}

func (a *Admin) alert(ctx context.Context, key string, err error) {
	a.opts.Alerter.Alert(ctx, fmt.Sprintf("%s: %v", Message(key, a.opts.Locale), err))
}
