package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ettle/strcase"

	"github.com/goliatone/go-salon/components/salon"
	"github.com/goliatone/go-salon/components/salon/commands"
	"github.com/goliatone/go-salon/components/salon/queries"
)

type adminCmd struct {
	List   adminListCmd   `cmd:"" help:"List records of a kind."`
	Get    adminGetCmd    `cmd:"" help:"Show one record."`
	Save   adminSaveCmd   `cmd:"" help:"Create (no --id) or update a record from --field key=value pairs."`
	Delete adminDeleteCmd `cmd:"" help:"Delete a record."`
	Move   adminMoveCmd   `cmd:"" help:"Move a master, service or promotion up or down."`
}

type kindArg struct {
	Kind string `arg:"" help:"users, masters, services, promotions, broadcasts, bot-buttons or settings."`
}

func (k kindArg) parse() (salon.EntityKind, error) {
	return salon.ParseKind(k.Kind)
}

type adminListCmd struct {
	Target kindArg `embed:""`
}

func (cmd *adminListCmd) Run(a *app) error {
	kind, err := cmd.Target.parse()
	if err != nil {
		return err
	}
	admin, err := a.admin()
	if err != nil {
		return err
	}
	view, err := queries.NewRecordsQuery(admin).Query(a.ctx, queries.RecordsInput{Kind: kind})
	if err != nil {
		return err
	}
	if a.JSON {
		return printJSON(a.stdout, view.Records)
	}
	t := newTable(a.stdout, "key", "title", "subtitle", "inactive")
	for _, s := range view.Summaries {
		inactive := ""
		if s.Inactive {
			inactive = "yes"
		}
		t.row(s.Key, s.Title, s.Subtitle, inactive)
	}
	return t.flush()
}

type adminGetCmd struct {
	Target kindArg `embed:""`
	ID     int64   `arg:"" help:"Record id."`
}

func (cmd *adminGetCmd) Run(a *app) error {
	kind, err := cmd.Target.parse()
	if err != nil {
		return err
	}
	admin, err := a.admin()
	if err != nil {
		return err
	}
	record, err := queries.NewRecordQuery(admin).Query(a.ctx, queries.RecordInput{Kind: kind, ID: cmd.ID})
	if err != nil {
		return err
	}
	return printJSON(a.stdout, record)
}

type adminSaveCmd struct {
	Target kindArg  `embed:""`
	ID     int64    `help:"Record id to update. Omit to create."`
	Field  []string `short:"f" help:"Field as key=value. Keys may be camelCase or kebab-case."`
}

func (cmd *adminSaveCmd) Run(a *app) error {
	kind, err := cmd.Target.parse()
	if err != nil {
		return err
	}
	fields, err := parseFields(cmd.Field)
	if err != nil {
		return err
	}
	admin, err := a.admin()
	if err != nil {
		return err
	}
	save := commands.NewSaveRecordCommand(admin, a.telemetry())
	if err := save.Execute(a.ctx, commands.SaveRecordInput{Kind: kind, ID: cmd.ID, Fields: fields}); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "✓ saved %s\n", kind)
	return nil
}

// parseFields turns key=value pairs into a form map. Keys are normalized to
// the backend's snake_case; a repeated key keeps the last value.
func parseFields(pairs []string) (map[string]any, error) {
	fields := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("salonctl: field %q must look like key=value", pair)
		}
		fields[strcase.ToSnake(key)] = value
	}
	return fields, nil
}

type adminDeleteCmd struct {
	Target kindArg `embed:""`
	ID     int64   `arg:"" help:"Record id."`
}

func (cmd *adminDeleteCmd) Run(a *app) error {
	kind, err := cmd.Target.parse()
	if err != nil {
		return err
	}
	admin, err := a.admin()
	if err != nil {
		return err
	}
	return commands.NewDeleteRecordCommand(admin, a.telemetry()).Execute(a.ctx, commands.DeleteRecordInput{Kind: kind, ID: cmd.ID})
}

type adminMoveCmd struct {
	Target    kindArg `embed:""`
	ID        int64   `arg:"" help:"Record id."`
	Direction string  `arg:"" enum:"up,down" help:"up or down."`
}

func (cmd *adminMoveCmd) Run(a *app) error {
	kind, err := cmd.Target.parse()
	if err != nil {
		return err
	}
	direction, err := salon.ParseDirection(cmd.Direction)
	if err != nil {
		return err
	}
	admin, err := a.admin()
	if err != nil {
		return err
	}
	moved, err := admin.Move(a.ctx, kind, cmd.ID, direction)
	if err != nil {
		return err
	}
	if !moved {
		fmt.Fprintln(a.stdout, "already at the edge")
		return nil
	}
	fmt.Fprintf(a.stdout, "✓ moved %s %d %s\n", kind, cmd.ID, direction)
	return nil
}

type settingsCmd struct {
	List settingsListCmd `cmd:"" default:"1" help:"List settings."`
	Set  settingsSetCmd  `cmd:"" help:"Change one setting."`
}

type settingsListCmd struct{}

func (cmd *settingsListCmd) Run(a *app) error {
	admin, err := a.admin()
	if err != nil {
		return err
	}
	settings, err := queries.NewSettingsQuery(admin).Query(a.ctx, queries.SettingsInput{})
	if err != nil {
		return err
	}
	if a.JSON {
		return printJSON(a.stdout, settings)
	}
	t := newTable(a.stdout, "key", "value", "type", "description")
	for _, s := range settings {
		t.row(s.Key, s.Value, s.Type, s.Description)
	}
	return t.flush()
}

type settingsSetCmd struct {
	Key   string `arg:"" help:"Setting key."`
	Value string `arg:"" help:"New value."`
	Type  string `help:"Value type: string, number, float or boolean. Looked up from the backend when omitted."`
}

func (cmd *settingsSetCmd) Run(a *app) error {
	switch salon.SettingType(cmd.Type) {
	case "", salon.SettingString, salon.SettingNumber, salon.SettingFloat, salon.SettingBoolean:
	default:
		return &salon.ValidationError{Field: "type", Reason: fmt.Sprintf("unknown setting type %q", cmd.Type)}
	}
	admin, err := a.admin()
	if err != nil {
		return err
	}
	update := commands.NewUpdateSettingCommand(admin, a.telemetry())
	input := commands.UpdateSettingInput{
		Key:   strcase.ToSnake(cmd.Key),
		Type:  salon.SettingType(cmd.Type),
		Value: cmd.Value,
	}
	if err := update.Execute(a.ctx, input); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "✓ %s updated\n", input.Key)
	return nil
}

type broadcastsCmd struct {
	View   broadcastViewCmd   `cmd:"" help:"Show a broadcast with its delivery counters."`
	Send   broadcastSendCmd   `cmd:"" help:"Send a broadcast now."`
	Delete broadcastDeleteCmd `cmd:"" help:"Delete a broadcast."`
}

type broadcastViewCmd struct {
	ID int64 `arg:"" help:"Broadcast id."`
}

func (cmd *broadcastViewCmd) Run(a *app) error {
	admin, err := a.admin()
	if err != nil {
		return err
	}
	b, err := admin.ViewBroadcast(a.ctx, cmd.ID)
	if err != nil {
		return err
	}
	if a.JSON {
		return printJSON(a.stdout, b)
	}
	t := newTable(a.stdout, "id", "status", "recipients", "sent", "failed", "scheduledAt")
	t.row(b.ID, b.Status, b.RecipientType, b.SentCount, b.FailedCount, deref(b.ScheduledAt))
	if err := t.flush(); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, b.Message)
	return nil
}

type broadcastSendCmd struct {
	ID int64 `arg:"" help:"Broadcast id."`
}

func (cmd *broadcastSendCmd) Run(a *app) error {
	admin, err := a.admin()
	if err != nil {
		return err
	}
	return commands.NewSendBroadcastCommand(admin, a.telemetry()).Execute(a.ctx, commands.SendBroadcastInput{ID: cmd.ID})
}

type broadcastDeleteCmd struct {
	ID int64 `arg:"" help:"Broadcast id."`
}

func (cmd *broadcastDeleteCmd) Run(a *app) error {
	admin, err := a.admin()
	if err != nil {
		return err
	}
	return admin.DeleteBroadcast(a.ctx, cmd.ID)
}

type transactionsCmd struct {
	List transactionsListCmd `cmd:"" help:"List a user's transactions."`
	Add  transactionsAddCmd  `cmd:"" help:"Credit (positive) or debit (negative) a user's balance."`
}

type transactionsListCmd struct {
	UserID int64 `arg:"" name:"user-id" help:"User id."`
}

func (cmd *transactionsListCmd) Run(a *app) error {
	admin, err := a.admin()
	if err != nil {
		return err
	}
	txs, err := admin.UserTransactions(a.ctx, cmd.UserID)
	if err != nil {
		return err
	}
	if a.JSON {
		return printJSON(a.stdout, txs)
	}
	t := newTable(a.stdout, "id", "createdAt", "amount", "transactionType", "description")
	for _, tx := range txs {
		t.row(tx.ID, tx.CreatedAt, tx.Amount, tx.TransactionType, tx.Description)
	}
	return t.flush()
}

type transactionsAddCmd struct {
	UserID      int64  `arg:"" name:"user-id" help:"User id."`
	Amount      int    `arg:"" help:"Points to add; negative to deduct."`
	Description string `short:"d" help:"Reason shown to the user."`
}

func (cmd *transactionsAddCmd) Run(a *app) error {
	admin, err := a.admin()
	if err != nil {
		return err
	}
	add := commands.NewAddTransactionCommand(admin, a.telemetry())
	if err := add.Execute(a.ctx, commands.AddTransactionInput{
		UserID:      cmd.UserID,
		Amount:      cmd.Amount,
		Description: cmd.Description,
	}); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "✓ %+d for user %d\n", cmd.Amount, cmd.UserID)
	return nil
}

type uploadCmd struct {
	Path   string `arg:"" type:"existingfile" help:"Image to upload."`
	Prefix string `default:"" help:"Form field prefix choosing the folder (master-photo, promotion-image, ...)."`
}

func (cmd *uploadCmd) Run(a *app) error {
	admin, err := a.admin()
	if err != nil {
		return err
	}
	file, err := os.Open(cmd.Path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("salonctl: open %s: %w", cmd.Path, err)
	}
	defer file.Close()
	url, err := admin.Upload(a.ctx, cmd.Prefix, filepath.Base(cmd.Path), file)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, url)
	return nil
}
