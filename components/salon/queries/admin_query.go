package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-salon/components/salon"
)

var errAdminRequired = errors.New("queries: admin controller is required")

// ButtonsStateInput is empty: the editor holds one session.
type ButtonsStateInput struct{}

type editorState interface {
	State() salon.EditorState
}

// ButtonsStateQuery snapshots the bot-buttons editor.
type ButtonsStateQuery struct {
	editor editorState
}

// NewButtonsStateQuery builds the query.
func NewButtonsStateQuery(editor editorState) *ButtonsStateQuery {
	return &ButtonsStateQuery{editor: editor}
}

var _ gocommand.Querier[ButtonsStateInput, salon.EditorState] = (*ButtonsStateQuery)(nil)

// Query resolves the view from the collaborator.
func (q *ButtonsStateQuery) Query(context.Context, ButtonsStateInput) (salon.EditorState, error) {
	if q.editor == nil {
		return salon.EditorState{}, errors.New("queries: button editor is required")
	}
	return q.editor.State(), nil
}

type keyboardPreviewer interface {
	Preview(audience salon.KeyboardAudience) salon.KeyboardPreview
}

// KeyboardPreviewQuery renders the editor grid as the bot keyboard.
type KeyboardPreviewQuery struct {
	editor keyboardPreviewer
}

// NewKeyboardPreviewQuery builds the query.
func NewKeyboardPreviewQuery(editor keyboardPreviewer) *KeyboardPreviewQuery {
	return &KeyboardPreviewQuery{editor: editor}
}

var _ gocommand.Querier[salon.KeyboardAudience, salon.KeyboardPreview] = (*KeyboardPreviewQuery)(nil)

// Query resolves the view from the collaborator.
func (q *KeyboardPreviewQuery) Query(_ context.Context, audience salon.KeyboardAudience) (salon.KeyboardPreview, error) {
	if q.editor == nil {
		return salon.KeyboardPreview{}, errors.New("queries: button editor is required")
	}
	return q.editor.Preview(audience), nil
}

// RecordsInput lists one admin tab.
type RecordsInput struct {
	Kind salon.EntityKind
}

// RecordsView is a tab listing with its display summaries.
type RecordsView struct {
	Kind      salon.EntityKind `json:"kind"`
	Records   []salon.Record   `json:"records"`
	Summaries []salon.Summary  `json:"summaries"`
}

type recordLister interface {
	List(ctx context.Context, kind salon.EntityKind) ([]salon.Record, error)
}

// RecordsQuery wraps Admin.List.
type RecordsQuery struct {
	admin recordLister
}

// NewRecordsQuery builds the query.
func NewRecordsQuery(admin recordLister) *RecordsQuery {
	return &RecordsQuery{admin: admin}
}

var _ gocommand.Querier[RecordsInput, RecordsView] = (*RecordsQuery)(nil)

// Query resolves the view from the collaborator.
func (q *RecordsQuery) Query(ctx context.Context, input RecordsInput) (RecordsView, error) {
	if q.admin == nil {
		return RecordsView{}, errAdminRequired
	}
	records, err := q.admin.List(ctx, input.Kind)
	if err != nil {
		return RecordsView{}, err
	}
	summaries := make([]salon.Summary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, salon.Summarize(record))
	}
	return RecordsView{Kind: input.Kind, Records: records, Summaries: summaries}, nil
}

// RecordInput selects one record for its edit form.
type RecordInput struct {
	Kind salon.EntityKind
	ID   int64
}

type recordGetter interface {
	Get(ctx context.Context, kind salon.EntityKind, id int64) (salon.Record, error)
}

// RecordQuery wraps Admin.Get.
type RecordQuery struct {
	admin recordGetter
}

// NewRecordQuery builds the query.
func NewRecordQuery(admin recordGetter) *RecordQuery {
	return &RecordQuery{admin: admin}
}

var _ gocommand.Querier[RecordInput, salon.Record] = (*RecordQuery)(nil)

// Query resolves the view from the collaborator.
func (q *RecordQuery) Query(ctx context.Context, input RecordInput) (salon.Record, error) {
	if q.admin == nil {
		return nil, errAdminRequired
	}
	return q.admin.Get(ctx, input.Kind, input.ID)
}

// SettingsInput is empty: settings are global.
type SettingsInput struct{}

type settingsLister interface {
	Settings(ctx context.Context) ([]salon.Setting, error)
}

// SettingsQuery wraps Admin.Settings.
type SettingsQuery struct {
	admin settingsLister
}

// NewSettingsQuery builds the query.
func NewSettingsQuery(admin settingsLister) *SettingsQuery {
	return &SettingsQuery{admin: admin}
}

var _ gocommand.Querier[SettingsInput, []salon.Setting] = (*SettingsQuery)(nil)

// Query resolves the view from the collaborator.
func (q *SettingsQuery) Query(ctx context.Context, _ SettingsInput) ([]salon.Setting, error) {
	if q.admin == nil {
		return nil, errAdminRequired
	}
	return q.admin.Settings(ctx)
}
