package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-salon/components/salon"
)

var errEditorRequired = errors.New("commands: button editor is required")

// ReloadButtonsInput asks for the authoritative button list.
type ReloadButtonsInput struct{}

type buttonLoader interface {
	Load(ctx context.Context) error
}

// ReloadButtonsCommand wraps Editor.Load.
type ReloadButtonsCommand struct {
	editor    buttonLoader
	telemetry Telemetry
}

// NewReloadButtonsCommand builds the command.
func NewReloadButtonsCommand(editor buttonLoader, telemetry Telemetry) *ReloadButtonsCommand {
	return &ReloadButtonsCommand{editor: editor, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ReloadButtonsInput] = (*ReloadButtonsCommand)(nil)

// Execute refetches the buttons and rebuilds the grid.
func (c *ReloadButtonsCommand) Execute(ctx context.Context, _ ReloadButtonsInput) error {
	if c.editor == nil {
		return errEditorRequired
	}
	if err := c.editor.Load(ctx); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "salon.command.reload_buttons", nil)
	return nil
}

// SelectButtonInput selects a persisted button. Zero ID clears the selection.
type SelectButtonInput struct {
	ID int64 `json:"id"`
}

type buttonSelector interface {
	Select(id int64) error
	ClearSelection()
}

// SelectButtonCommand wraps Editor.Select and Editor.ClearSelection.
type SelectButtonCommand struct {
	editor    buttonSelector
	telemetry Telemetry
}

// NewSelectButtonCommand builds the command.
func NewSelectButtonCommand(editor buttonSelector, telemetry Telemetry) *SelectButtonCommand {
	return &SelectButtonCommand{editor: editor, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SelectButtonInput] = (*SelectButtonCommand)(nil)

// Execute changes the editing target.
func (c *SelectButtonCommand) Execute(ctx context.Context, msg SelectButtonInput) error {
	if c.editor == nil {
		return errEditorRequired
	}
	if msg.ID == 0 {
		c.editor.ClearSelection()
	} else if err := c.editor.Select(msg.ID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "salon.command.select_button", map[string]any{"button_id": msg.ID})
	return nil
}

// CreateDraftInput starts an unsaved button at the end of Row. Zero Row opens
// a new placeholder row first.
type CreateDraftInput struct {
	Row int `json:"row"`
}

type draftCreator interface {
	AddRow() int
	CreateDraft(row int) (salon.BotButton, error)
}

// CreateDraftCommand wraps Editor.CreateDraft.
type CreateDraftCommand struct {
	editor    draftCreator
	telemetry Telemetry
}

// NewCreateDraftCommand builds the command.
func NewCreateDraftCommand(editor draftCreator, telemetry Telemetry) *CreateDraftCommand {
	return &CreateDraftCommand{editor: editor, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[CreateDraftInput] = (*CreateDraftCommand)(nil)

// Execute opens the draft, adding a row when none was given.
func (c *CreateDraftCommand) Execute(ctx context.Context, msg CreateDraftInput) error {
	if c.editor == nil {
		return errEditorRequired
	}
	row := msg.Row
	if row == 0 {
		row = c.editor.AddRow()
	}
	if _, err := c.editor.CreateDraft(row); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "salon.command.create_draft", map[string]any{"row": row})
	return nil
}

// AddRowInput opens an empty placeholder row.
type AddRowInput struct{}

type rowAdder interface {
	AddRow() int
}

// AddRowCommand wraps Editor.AddRow.
type AddRowCommand struct {
	editor    rowAdder
	telemetry Telemetry
}

// NewAddRowCommand builds the command.
func NewAddRowCommand(editor rowAdder, telemetry Telemetry) *AddRowCommand {
	return &AddRowCommand{editor: editor, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AddRowInput] = (*AddRowCommand)(nil)

// Execute appends a placeholder row below the last one.
func (c *AddRowCommand) Execute(ctx context.Context, _ AddRowInput) error {
	if c.editor == nil {
		return errEditorRequired
	}
	row := c.editor.AddRow()
	c.telemetry.Record(ctx, "salon.command.add_row", map[string]any{"row": row})
	return nil
}

// MoveButtonInput drops button ID into Row at Index.
type MoveButtonInput struct {
	ID    int64 `json:"id"`
	Row   int   `json:"row"`
	Index int   `json:"index"`
}

type buttonMover interface {
	BeginMove(id int64) error
	ProposeMove(row, index int) bool
	CommitMove(ctx context.Context, row, index int) error
	CancelMove()
}

// MoveButtonCommand runs a whole drag gesture: begin, propose, commit.
type MoveButtonCommand struct {
	editor    buttonMover
	telemetry Telemetry
}

// NewMoveButtonCommand builds the command.
func NewMoveButtonCommand(editor buttonMover, telemetry Telemetry) *MoveButtonCommand {
	return &MoveButtonCommand{editor: editor, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[MoveButtonInput] = (*MoveButtonCommand)(nil)

// Execute moves the button locally. The order stays dirty until saved.
func (c *MoveButtonCommand) Execute(ctx context.Context, msg MoveButtonInput) error {
	if c.editor == nil {
		return errEditorRequired
	}
	if err := c.editor.BeginMove(msg.ID); err != nil {
		return err
	}
	if !c.editor.ProposeMove(msg.Row, msg.Index) {
		c.editor.CancelMove()
		return &salon.ValidationError{Field: "row", Reason: "is not a valid drop target"}
	}
	if err := c.editor.CommitMove(ctx, msg.Row, msg.Index); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "salon.command.move_button", map[string]any{
		"button_id": msg.ID,
		"row":       msg.Row,
		"index":     msg.Index,
	})
	return nil
}

// SaveOrderInput persists pending moves.
type SaveOrderInput struct{}

type orderSaver interface {
	SaveOrder(ctx context.Context) error
}

// SaveOrderCommand wraps Editor.SaveOrder.
type SaveOrderCommand struct {
	editor    orderSaver
	telemetry Telemetry
}

// NewSaveOrderCommand builds the command.
func NewSaveOrderCommand(editor orderSaver, telemetry Telemetry) *SaveOrderCommand {
	return &SaveOrderCommand{editor: editor, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveOrderInput] = (*SaveOrderCommand)(nil)

// Execute persists the row/order of every button.
func (c *SaveOrderCommand) Execute(ctx context.Context, _ SaveOrderInput) error {
	if c.editor == nil {
		return errEditorRequired
	}
	if err := c.editor.SaveOrder(ctx); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "salon.command.save_order", nil)
	return nil
}

// SaveButtonInput carries the edit form for the current selection. When ID
// is set the button is selected first.
type SaveButtonInput struct {
	ID   int64            `json:"id,omitempty"`
	Form salon.ButtonForm `json:"form"`
}

type buttonSaver interface {
	Select(id int64) error
	SaveButton(ctx context.Context, form salon.ButtonForm) (salon.BotButton, error)
}

// SaveButtonCommand wraps Editor.SaveButton.
type SaveButtonCommand struct {
	editor    buttonSaver
	telemetry Telemetry
}

// NewSaveButtonCommand builds the command.
func NewSaveButtonCommand(editor buttonSaver, telemetry Telemetry) *SaveButtonCommand {
	return &SaveButtonCommand{editor: editor, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveButtonInput] = (*SaveButtonCommand)(nil)

// Execute creates the draft or updates the selected button.
func (c *SaveButtonCommand) Execute(ctx context.Context, msg SaveButtonInput) error {
	if c.editor == nil {
		return errEditorRequired
	}
	if msg.ID != 0 {
		if err := c.editor.Select(msg.ID); err != nil {
			return err
		}
	}
	saved, err := c.editor.SaveButton(ctx, msg.Form)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "salon.command.save_button", map[string]any{"button_id": saved.ID})
	return nil
}

// DeleteButtonInput deletes the selected button, or button ID when set.
type DeleteButtonInput struct {
	ID int64 `json:"id,omitempty"`
}

type buttonDeleter interface {
	Select(id int64) error
	DeleteButton(ctx context.Context) error
}

// DeleteButtonCommand wraps Editor.DeleteButton.
type DeleteButtonCommand struct {
	editor    buttonDeleter
	telemetry Telemetry
}

// NewDeleteButtonCommand builds the command.
func NewDeleteButtonCommand(editor buttonDeleter, telemetry Telemetry) *DeleteButtonCommand {
	return &DeleteButtonCommand{editor: editor, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[DeleteButtonInput] = (*DeleteButtonCommand)(nil)

// Execute removes the button once the operator confirms.
func (c *DeleteButtonCommand) Execute(ctx context.Context, msg DeleteButtonInput) error {
	if c.editor == nil {
		return errEditorRequired
	}
	if msg.ID != 0 {
		if err := c.editor.Select(msg.ID); err != nil {
			return err
		}
	}
	if err := c.editor.DeleteButton(ctx); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "salon.command.delete_button", map[string]any{"button_id": msg.ID})
	return nil
}
