package httpapi

import (
	"github.com/goliatone/go-salon/components/salon"
	"github.com/goliatone/go-salon/components/salon/commands"
	"github.com/goliatone/go-salon/components/salon/queries"
)

// ConsoleOptions collects the collaborators behind the console endpoints.
// Nil collaborators leave their endpoints unmounted.
type ConsoleOptions struct {
	Editor     *salon.Editor
	Admin      *salon.Admin
	Storefront *salon.Storefront
	Profile    salon.ProfileSource
	ChartCache salon.RenderCache
	Telemetry  commands.Telemetry
	BaseURL    string
}

// NewConsole wires commands and queries into Handlers.
func NewConsole(opts ConsoleOptions) *Handlers {
	h := &Handlers{BaseURL: opts.BaseURL}
	if editor := opts.Editor; editor != nil {
		h.Reload = commands.NewReloadButtonsCommand(editor, opts.Telemetry)
		h.Select = commands.NewSelectButtonCommand(editor, opts.Telemetry)
		h.Draft = commands.NewCreateDraftCommand(editor, opts.Telemetry)
		h.AddRow = commands.NewAddRowCommand(editor, opts.Telemetry)
		h.Move = commands.NewMoveButtonCommand(editor, opts.Telemetry)
		h.Save = commands.NewSaveButtonCommand(editor, opts.Telemetry)
		h.Delete = commands.NewDeleteButtonCommand(editor, opts.Telemetry)
		h.SaveOrder = commands.NewSaveOrderCommand(editor, opts.Telemetry)
		h.State = queries.NewButtonsStateQuery(editor)
		h.Preview = queries.NewKeyboardPreviewQuery(editor)
		h.Layout = editor
	}
	if opts.Storefront != nil {
		h.Storefront = queries.NewStorefrontQuery(opts.Storefront)
	}
	if opts.Profile != nil {
		h.Chart = queries.NewBalanceChartQuery(opts.Profile, opts.ChartCache, "")
	}
	if opts.Admin != nil {
		h.Records = queries.NewRecordsQuery(opts.Admin)
		h.Settings = queries.NewSettingsQuery(opts.Admin)
	}
	return h
}
