package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/goliatone/go-salon/components/salon"
	"github.com/goliatone/go-salon/components/salon/commands"
	"github.com/goliatone/go-salon/components/salon/queries"
)

type buttonsCmd struct {
	List    buttonsListCmd    `cmd:"" default:"1" help:"Show the keyboard grid."`
	Move    buttonsMoveCmd    `cmd:"" help:"Move a button to a row and position, then save the order. A new row number opens a row."`
	Create  buttonsCreateCmd  `cmd:"" help:"Create a button."`
	Update  buttonsUpdateCmd  `cmd:"" help:"Update a button. Unset flags keep their value."`
	Delete  buttonsDeleteCmd  `cmd:"" help:"Delete a button."`
	Export  buttonsExportCmd  `cmd:"" help:"Export the grid as a YAML layout."`
	Import  buttonsImportCmd  `cmd:"" help:"Apply a YAML layout and save the order."`
	Preview buttonsPreviewCmd `cmd:"" help:"Show the reply keyboard a user would get."`
}

type buttonsListCmd struct{}

func (cmd *buttonsListCmd) Run(a *app) error {
	editor, err := a.editor()
	if err != nil {
		return err
	}
	return printState(a, editor)
}

func printState(a *app, editor *salon.Editor) error {
	state, err := queries.NewButtonsStateQuery(editor).Query(a.ctx, queries.ButtonsStateInput{})
	if err != nil {
		return err
	}
	if a.JSON {
		return printJSON(a.stdout, state)
	}
	t := newTable(a.stdout, "row", "order", "id", "text", "handler", "adminOnly", "active")
	for _, row := range state.Rows {
		if len(row.Buttons) == 0 {
			t.row(row.Number, "-", "-", "(empty)", "", "", "")
			continue
		}
		for _, b := range row.Buttons {
			t.row(row.Number, b.OrderInRow, b.ID, b.ButtonText, b.HandlerType, yesNo(b.IsAdminOnly), yesNo(b.IsActive))
		}
	}
	return t.flush()
}

type buttonsMoveCmd struct {
	ID     int64 `arg:"" help:"Button id."`
	Row    int   `arg:"" help:"Target row number. Use the next free number for a new row."`
	Index  int   `arg:"" optional:"" help:"Position within the target row, clamped to its length."`
	DryRun bool  `name:"dry-run" help:"Show the resulting grid without saving."`
}

func (cmd *buttonsMoveCmd) Run(a *app) error {
	editor, err := a.editor()
	if err != nil {
		return err
	}
	move := commands.NewMoveButtonCommand(editor, a.telemetry())
	if err := move.Execute(a.ctx, commands.MoveButtonInput{ID: cmd.ID, Row: cmd.Row, Index: cmd.Index}); err != nil {
		return err
	}
	if !cmd.DryRun {
		if err := commands.NewSaveOrderCommand(editor, a.telemetry()).Execute(a.ctx, commands.SaveOrderInput{}); err != nil {
			return err
		}
	}
	return printState(a, editor)
}

type buttonFlags struct {
	Text      string `help:"Button label shown in the keyboard."`
	Response  string `help:"Text the bot replies with."`
	Handler   string `help:"Handler type: book, info, profile or admin."`
	Row       int    `help:"Row number. Zero keeps the current placement."`
	Order     int    `default:"-1" help:"Position within the row, used with --row. Defaults to the end of the row."`
	WebApp    string `name:"web-app" help:"Mini App URL opened by the button. Use '-' to clear."`
	AdminOnly string `name:"admin-only" help:"Show the button to admins only (yes/no)."`
	Active    string `help:"Whether the button is shown (yes/no)."`
}

// form overlays the flags that were set on base. Placement is left alone;
// --row and --order go through placeButton.
func (f buttonFlags) form(base salon.ButtonForm) (salon.ButtonForm, error) {
	if f.Text != "" {
		base.ButtonText = f.Text
	}
	if f.Response != "" {
		base.ResponseText = f.Response
	}
	if f.Handler != "" {
		handler, err := parseHandler(f.Handler)
		if err != nil {
			return base, err
		}
		base.HandlerType = handler
	}
	switch f.WebApp {
	case "":
	case "-":
		base.WebAppURL = ""
	default:
		base.WebAppURL = f.WebApp
	}
	var err error
	if base.IsAdminOnly, err = yesNoFlag("admin_only", f.AdminOnly, base.IsAdminOnly); err != nil {
		return base, err
	}
	if base.IsActive, err = yesNoFlag("is_active", f.Active, base.IsActive); err != nil {
		return base, err
	}
	return base, nil
}

func yesNoFlag(field, raw string, current bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return current, nil
	case "yes", "true":
		return true, nil
	case "no", "false":
		return false, nil
	}
	return current, &salon.ValidationError{Field: field, Reason: "must be yes or no"}
}

func parseHandler(raw string) (salon.HandlerType, error) {
	normalized := salon.HandlerType(strings.ToLower(strings.TrimSpace(raw)))
	for _, handler := range salon.HandlerTypes() {
		if handler == normalized {
			return handler, nil
		}
	}
	return "", &salon.ValidationError{Field: "handler_type", Reason: fmt.Sprintf("unknown handler %q", raw)}
}

// placeButton moves id to row at order and saves the whole order, so the
// source and target rows both stay dense. A negative order appends.
func placeButton(a *app, editor *salon.Editor, id int64, row, order int) error {
	index := order
	if index < 0 {
		index = math.MaxInt32
	}
	move := commands.NewMoveButtonCommand(editor, a.telemetry())
	if err := move.Execute(a.ctx, commands.MoveButtonInput{ID: id, Row: row, Index: index}); err != nil {
		return err
	}
	return commands.NewSaveOrderCommand(editor, a.telemetry()).Execute(a.ctx, commands.SaveOrderInput{})
}

func formOf(b salon.BotButton) salon.ButtonForm {
	return salon.ButtonForm{
		ButtonText:   b.ButtonText,
		ResponseText: b.ResponseText,
		HandlerType:  b.HandlerType,
		WebAppURL:    deref(b.WebAppURL),
		IsAdminOnly:  b.IsAdminOnly,
		IsActive:     b.IsActive,
	}
}

type buttonsCreateCmd struct {
	Flags buttonFlags `embed:""`
}

func (cmd *buttonsCreateCmd) Run(a *app) error {
	editor, err := a.editor()
	if err != nil {
		return err
	}
	form, err := cmd.Flags.form(salon.ButtonForm{IsActive: true})
	if err != nil {
		return err
	}
	draft := commands.NewCreateDraftCommand(editor, a.telemetry())
	if err := draft.Execute(a.ctx, commands.CreateDraftInput{Row: cmd.Flags.Row}); err != nil {
		return err
	}
	if err := commands.NewSaveButtonCommand(editor, a.telemetry()).Execute(a.ctx, commands.SaveButtonInput{Form: form}); err != nil {
		return err
	}
	if cmd.Flags.Row != 0 && cmd.Flags.Order >= 0 {
		created, ok := editor.Selected()
		if !ok {
			return salon.ErrNoSelection
		}
		if err := placeButton(a, editor, created.ID, cmd.Flags.Row, cmd.Flags.Order); err != nil {
			return err
		}
	}
	return printState(a, editor)
}

type buttonsUpdateCmd struct {
	ID    int64       `arg:"" help:"Button id."`
	Flags buttonFlags `embed:""`
}

func (cmd *buttonsUpdateCmd) Run(a *app) error {
	editor, err := a.editor()
	if err != nil {
		return err
	}
	if cmd.Flags.Row != 0 {
		if err := placeButton(a, editor, cmd.ID, cmd.Flags.Row, cmd.Flags.Order); err != nil {
			return err
		}
	}
	if err := commands.NewSelectButtonCommand(editor, a.telemetry()).Execute(a.ctx, commands.SelectButtonInput{ID: cmd.ID}); err != nil {
		return err
	}
	current, ok := editor.Selected()
	if !ok {
		return salon.ErrNoSelection
	}
	form, err := cmd.Flags.form(formOf(current))
	if err != nil {
		return err
	}
	if err := commands.NewSaveButtonCommand(editor, a.telemetry()).Execute(a.ctx, commands.SaveButtonInput{ID: cmd.ID, Form: form}); err != nil {
		return err
	}
	return printState(a, editor)
}

type buttonsDeleteCmd struct {
	ID int64 `arg:"" help:"Button id."`
}

func (cmd *buttonsDeleteCmd) Run(a *app) error {
	editor, err := a.editor()
	if err != nil {
		return err
	}
	if err := commands.NewDeleteButtonCommand(editor, a.telemetry()).Execute(a.ctx, commands.DeleteButtonInput{ID: cmd.ID}); err != nil {
		return err
	}
	return printState(a, editor)
}

type buttonsExportCmd struct {
	Out string `short:"o" type:"path" help:"Write the layout here instead of stdout."`
}

func (cmd *buttonsExportCmd) Run(a *app) error {
	editor, err := a.editor()
	if err != nil {
		return err
	}
	if cmd.Out == "" {
		return editor.ExportLayout(a.stdout)
	}
	file, err := os.Create(cmd.Out) //nolint:gosec
	if err != nil {
		return fmt.Errorf("salonctl: create layout %s: %w", cmd.Out, err)
	}
	defer file.Close()
	if err := editor.ExportLayout(file); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "✓ layout written to %s\n", cmd.Out)
	return nil
}

type buttonsImportCmd struct {
	Path   string `arg:"" type:"existingfile" help:"Layout YAML exported by 'buttons export'."`
	DryRun bool   `name:"dry-run" help:"Show the resulting grid without saving."`
}

func (cmd *buttonsImportCmd) Run(a *app) error {
	editor, err := a.editor()
	if err != nil {
		return err
	}
	apply := commands.NewApplyLayoutCommand(editor, a.telemetry())
	err = apply.Execute(a.ctx, commands.ApplyLayoutInput{Path: cmd.Path, Save: !cmd.DryRun})
	if errors.Is(err, salon.ErrUnknownButton) {
		a.prompt().Alert(a.ctx, fmt.Sprintf("%s: %v", salon.Message("layout.unknown_ids", a.locale()), err))
		err = nil
	}
	if err != nil {
		return err
	}
	return printState(a, editor)
}

type buttonsPreviewCmd struct {
	Admin   bool   `help:"Preview the keyboard an admin gets."`
	BaseURL string `name:"base-url" help:"Mini App origin. Web app buttons need https."`
}

func (cmd *buttonsPreviewCmd) Run(a *app) error {
	editor, err := a.editor()
	if err != nil {
		return err
	}
	preview, err := queries.NewKeyboardPreviewQuery(editor).Query(a.ctx, salon.KeyboardAudience{
		Admin:   cmd.Admin,
		BaseURL: cmd.BaseURL,
		Locale:  a.locale(),
	})
	if err != nil {
		return err
	}
	if a.JSON {
		return printJSON(a.stdout, preview)
	}
	if preview.Fallback {
		fmt.Fprintln(a.stdout, "(default keyboard)")
	}
	for _, row := range preview.Markup.Keyboard {
		labels := make([]string, 0, len(row))
		for _, key := range row {
			label := "[" + key.Text + "]"
			if target, ok := preview.WebApps[key.Text]; ok {
				label += " -> " + target
			}
			labels = append(labels, label)
		}
		fmt.Fprintln(a.stdout, strings.Join(labels, "  "))
	}
	return nil
}
