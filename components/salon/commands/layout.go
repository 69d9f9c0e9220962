package commands

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-salon/components/salon"
)

// ApplyLayoutInput imports a keyboard layout. Document wins over Path. Save
// persists the resulting order right away.
type ApplyLayoutInput struct {
	Document *salon.LayoutDocument
	Path     string
	Save     bool
}

type layoutApplier interface {
	Load(ctx context.Context) error
	ApplyLayout(ctx context.Context, doc *salon.LayoutDocument) ([]int64, error)
	SaveOrder(ctx context.Context) error
}

// ApplyLayoutCommand reloads the editor, applies a layout document and
// optionally saves the order. Ids the backend does not know are skipped and
// reported as ErrUnknownButton after the known ones were applied.
type ApplyLayoutCommand struct {
	editor    layoutApplier
	telemetry Telemetry
}

// NewApplyLayoutCommand builds the command.
func NewApplyLayoutCommand(editor layoutApplier, telemetry Telemetry) *ApplyLayoutCommand {
	return &ApplyLayoutCommand{editor: editor, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ApplyLayoutInput] = (*ApplyLayoutCommand)(nil)

// Execute loads the document from Path unless Document is set.
func (c *ApplyLayoutCommand) Execute(ctx context.Context, msg ApplyLayoutInput) error {
	if c.editor == nil {
		return errEditorRequired
	}
	doc := msg.Document
	if doc == nil {
		if msg.Path == "" {
			return errors.New("commands: layout document or path is required")
		}
		loaded, err := salon.ReadLayout(msg.Path)
		if err != nil {
			return err
		}
		doc = loaded
	}
	if err := c.editor.Load(ctx); err != nil {
		return err
	}
	unknown, err := c.editor.ApplyLayout(ctx, doc)
	if err != nil {
		return err
	}
	if msg.Save {
		if err := c.editor.SaveOrder(ctx); err != nil {
			return err
		}
	}
	c.telemetry.Record(ctx, "salon.command.apply_layout", map[string]any{
		"source":  doc.Source,
		"unknown": len(unknown),
		"saved":   msg.Save,
	})
	if len(unknown) > 0 {
		return fmt.Errorf("%w: %v", salon.ErrUnknownButton, unknown)
	}
	return nil
}
