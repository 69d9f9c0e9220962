package salon

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LayoutVersion is the current layout document format.
const LayoutVersion = "1"

// LayoutDocument is a versionable YAML snapshot of the reply keyboard. Row
// and order are implied by position inside the document.
type LayoutDocument struct {
	Version string      `yaml:"version"`
	Rows    []LayoutRow `yaml:"rows"`
	Source  string      `yaml:"-"`
}

// LayoutRow lists the buttons of one keyboard row left to right.
type LayoutRow struct {
	Row     int         `yaml:"row"`
	Buttons []BotButton `yaml:"buttons"`
}

// ExportLayout writes rows as a layout document. Placeholder rows are
// omitted.
func ExportLayout(w io.Writer, rows []Row) error {
	doc := LayoutDocument{Version: LayoutVersion, Rows: []LayoutRow{}}
	for _, row := range rows {
		if len(row.Buttons) == 0 {
			continue
		}
		doc.Rows = append(doc.Rows, LayoutRow{Row: row.Number, Buttons: append([]BotButton{}, row.Buttons...)})
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("salon: encode layout: %w", err)
	}
	return encoder.Close()
}

// ReadLayout loads a layout document from disk.
func ReadLayout(path string) (*LayoutDocument, error) {
	raw, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("salon: open layout %s: %w", path, err)
	}
	doc, err := DecodeLayout(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("salon: decode layout %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeLayout parses and validates a layout document. Unknown fields are
// rejected.
func DecodeLayout(r io.Reader) (*LayoutDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc LayoutDocument
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("salon: layout is empty")
		}
		return nil, fmt.Errorf("salon: parse layout: %w", err)
	}
	if doc.Version == "" {
		doc.Version = LayoutVersion
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks version, row numbers and button ids.
func (doc *LayoutDocument) Validate() error {
	if doc.Version != LayoutVersion {
		return fmt.Errorf("salon: unsupported layout version %q", doc.Version)
	}
	rows := make(map[int]struct{}, len(doc.Rows))
	ids := make(map[int64]struct{})
	for idx, row := range doc.Rows {
		if row.Row < 1 {
			return fmt.Errorf("salon: layout row at index %d has invalid number %d", idx, row.Row)
		}
		if _, dup := rows[row.Row]; dup {
			return fmt.Errorf("salon: layout duplicates row %d", row.Row)
		}
		rows[row.Row] = struct{}{}
		for pos, button := range row.Buttons {
			if button.ID == 0 {
				return fmt.Errorf("salon: layout row %d button %d is missing id", row.Row, pos)
			}
			if _, dup := ids[button.ID]; dup {
				return fmt.Errorf("salon: layout duplicates button %d", button.ID)
			}
			ids[button.ID] = struct{}{}
		}
	}
	return nil
}

// ApplyLayout moves every known button of doc to its documented row and
// position as unsaved local moves. Ids the editor does not know are returned
// and skipped. Buttons absent from doc keep their rows after the placed ones.
func (e *Editor) ApplyLayout(ctx context.Context, doc *LayoutDocument) ([]int64, error) {
	if doc == nil {
		return nil, fmt.Errorf("salon: layout document is nil")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dragID = 0

	rows := e.rows
	var unknown []int64
	moved := 0
	for _, row := range doc.Rows {
		index := 0
		for _, button := range row.Buttons {
			if r, _ := locateButton(rows, button.ID); r < 0 {
				unknown = append(unknown, button.ID)
				continue
			}
			next, err := moveButton(rows, button.ID, row.Row, index)
			if err != nil {
				return unknown, err
			}
			rows = next
			index++
			moved++
		}
	}
	if moved > 0 {
		e.rows = rows
		e.extraRows = emptyRowNumbers(rows)
		e.dirtyOrder = true
	}
	e.opts.Telemetry.Record(ctx, "salon.buttons.apply_layout", map[string]any{
		"moved":   moved,
		"unknown": len(unknown),
	})
	return unknown, nil
}

// ExportLayout writes the current grid as a layout document.
func (e *Editor) ExportLayout(w io.Writer) error {
	return ExportLayout(w, e.State().Rows)
}

// Preview renders the current grid as the bot's reply keyboard.
func (e *Editor) Preview(audience KeyboardAudience) KeyboardPreview {
	return KeyboardMarkup(e.State().Rows, audience)
}
