package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-salon/components/salon"
)

var errAdminRequired = errors.New("commands: admin controller is required")

// SaveRecordInput creates (ID == 0) or updates a record of Kind.
type SaveRecordInput struct {
	Kind   salon.EntityKind `json:"kind"`
	ID     int64            `json:"id,omitempty"`
	Fields map[string]any   `json:"fields"`
}

type recordSaver interface {
	Save(ctx context.Context, kind salon.EntityKind, id int64, fields map[string]any) (salon.Record, error)
}

// SaveRecordCommand wraps Admin.Save.
type SaveRecordCommand struct {
	admin     recordSaver
	telemetry Telemetry
}

// NewSaveRecordCommand builds the command.
func NewSaveRecordCommand(admin recordSaver, telemetry Telemetry) *SaveRecordCommand {
	return &SaveRecordCommand{admin: admin, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveRecordInput] = (*SaveRecordCommand)(nil)

// Execute creates or updates the record.
func (c *SaveRecordCommand) Execute(ctx context.Context, msg SaveRecordInput) error {
	if c.admin == nil {
		return errAdminRequired
	}
	if _, err := c.admin.Save(ctx, msg.Kind, msg.ID, msg.Fields); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "salon.command.save_record", map[string]any{
		"kind":   string(msg.Kind),
		"id":     msg.ID,
		"fields": len(msg.Fields),
	})
	return nil
}

// DeleteRecordInput removes a record after confirmation.
type DeleteRecordInput struct {
	Kind salon.EntityKind `json:"kind"`
	ID   int64            `json:"id"`
}

type recordDeleter interface {
	Delete(ctx context.Context, kind salon.EntityKind, id int64) error
}

// DeleteRecordCommand wraps Admin.Delete.
type DeleteRecordCommand struct {
	admin     recordDeleter
	telemetry Telemetry
}

// NewDeleteRecordCommand builds the command.
func NewDeleteRecordCommand(admin recordDeleter, telemetry Telemetry) *DeleteRecordCommand {
	return &DeleteRecordCommand{admin: admin, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DeleteRecordInput] = (*DeleteRecordCommand)(nil)

// Execute removes the record once the operator confirms.
func (c *DeleteRecordCommand) Execute(ctx context.Context, msg DeleteRecordInput) error {
	if c.admin == nil {
		return errAdminRequired
	}
	if err := c.admin.Delete(ctx, msg.Kind, msg.ID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "salon.command.delete_record", map[string]any{
		"kind": string(msg.Kind),
		"id":   msg.ID,
	})
	return nil
}

// MoveRecordInput shifts an ordered record one slot.
type MoveRecordInput struct {
	Kind      salon.EntityKind `json:"kind"`
	ID        int64            `json:"id"`
	Direction salon.Direction  `json:"direction"`
}

type recordMover interface {
	Move(ctx context.Context, kind salon.EntityKind, id int64, direction salon.Direction) (bool, error)
}

// MoveRecordCommand wraps Admin.Move. Hitting the edge is not an error.
type MoveRecordCommand struct {
	admin     recordMover
	telemetry Telemetry
}

// NewMoveRecordCommand builds the command.
func NewMoveRecordCommand(admin recordMover, telemetry Telemetry) *MoveRecordCommand {
	return &MoveRecordCommand{admin: admin, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[MoveRecordInput] = (*MoveRecordCommand)(nil)

// Execute shifts the record one slot up or down.
func (c *MoveRecordCommand) Execute(ctx context.Context, msg MoveRecordInput) error {
	if c.admin == nil {
		return errAdminRequired
	}
	moved, err := c.admin.Move(ctx, msg.Kind, msg.ID, msg.Direction)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "salon.command.move_record", map[string]any{
		"kind":      string(msg.Kind),
		"id":        msg.ID,
		"direction": string(msg.Direction),
		"moved":     moved,
	})
	return nil
}

// AddTransactionInput adjusts a user's balance.
type AddTransactionInput struct {
	UserID      int64  `json:"user_id"`
	Amount      int    `json:"amount"`
	Description string `json:"description"`
}

type transactionAdder interface {
	AddTransaction(ctx context.Context, userID int64, amount int, description string) (salon.Transaction, error)
}

// AddTransactionCommand wraps Admin.AddTransaction.
type AddTransactionCommand struct {
	admin     transactionAdder
	telemetry Telemetry
}

// NewAddTransactionCommand builds the command.
func NewAddTransactionCommand(admin transactionAdder, telemetry Telemetry) *AddTransactionCommand {
	return &AddTransactionCommand{admin: admin, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AddTransactionInput] = (*AddTransactionCommand)(nil)

// Execute credits or debits the user.
func (c *AddTransactionCommand) Execute(ctx context.Context, msg AddTransactionInput) error {
	if c.admin == nil {
		return errAdminRequired
	}
	if _, err := c.admin.AddTransaction(ctx, msg.UserID, msg.Amount, msg.Description); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "salon.command.add_transaction", map[string]any{
		"user_id": msg.UserID,
		"amount":  msg.Amount,
	})
	return nil
}

// SendBroadcastInput starts delivery of a broadcast.
type SendBroadcastInput struct {
	ID int64 `json:"id"`
}

type broadcastSender interface {
	SendBroadcast(ctx context.Context, id int64) (bool, error)
}

// SendBroadcastCommand wraps Admin.SendBroadcast.
type SendBroadcastCommand struct {
	admin     broadcastSender
	telemetry Telemetry
}

// NewSendBroadcastCommand builds the command.
func NewSendBroadcastCommand(admin broadcastSender, telemetry Telemetry) *SendBroadcastCommand {
	return &SendBroadcastCommand{admin: admin, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SendBroadcastInput] = (*SendBroadcastCommand)(nil)

// Execute asks the backend to deliver the broadcast.
func (c *SendBroadcastCommand) Execute(ctx context.Context, msg SendBroadcastInput) error {
	if c.admin == nil {
		return errAdminRequired
	}
	sent, err := c.admin.SendBroadcast(ctx, msg.ID)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "salon.command.send_broadcast", map[string]any{
		"id":   msg.ID,
		"sent": sent,
	})
	return nil
}

// UpdateSettingInput changes one backend setting. Empty Type looks it up.
type UpdateSettingInput struct {
	Key   string            `json:"key"`
	Type  salon.SettingType `json:"type,omitempty"`
	Value any               `json:"value"`
}

type settingUpdater interface {
	UpdateSetting(ctx context.Context, key string, typ salon.SettingType, raw any) (any, error)
}

// UpdateSettingCommand wraps Admin.UpdateSetting.
type UpdateSettingCommand struct {
	admin     settingUpdater
	telemetry Telemetry
}

// NewUpdateSettingCommand builds the command.
func NewUpdateSettingCommand(admin settingUpdater, telemetry Telemetry) *UpdateSettingCommand {
	return &UpdateSettingCommand{admin: admin, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdateSettingInput] = (*UpdateSettingCommand)(nil)

// Execute stores the value coerced to the setting type.
func (c *UpdateSettingCommand) Execute(ctx context.Context, msg UpdateSettingInput) error {
	if c.admin == nil {
		return errAdminRequired
	}
	if _, err := c.admin.UpdateSetting(ctx, msg.Key, msg.Type, msg.Value); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "salon.command.update_setting", map[string]any{"key": msg.Key})
	return nil
}
