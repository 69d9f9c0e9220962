package salon

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportLayoutRoundTripsPositions(t *testing.T) {
	editor := loadedEditor(t, newStubButtonGateway(sampleButtons()...))
	editor.AddRow()

	var buf bytes.Buffer
	require.NoError(t, editor.ExportLayout(&buf))
	assert.NotContains(t, buf.String(), "row_number")
	assert.Contains(t, buf.String(), "version: \"1\"")

	doc, err := DecodeLayout(&buf)
	require.NoError(t, err)
	require.Len(t, doc.Rows, 2)
	assert.Equal(t, 1, doc.Rows[0].Row)
	assert.Equal(t, []int64{2, 1}, []int64{doc.Rows[0].Buttons[0].ID, doc.Rows[0].Buttons[1].ID})
	assert.Equal(t, "Профиль", doc.Rows[0].Buttons[0].ButtonText)
}

func TestDecodeLayoutRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"empty":         ``,
		"version":       "version: \"2\"\nrows: []\n",
		"unknown field": "version: \"1\"\nrows:\n  - row: 1\n    color: red\n",
		"row number":    "version: \"1\"\nrows:\n  - row: 0\n    buttons: []\n",
		"duplicate row": "version: \"1\"\nrows:\n  - row: 1\n  - row: 1\n",
		"missing id":    "version: \"1\"\nrows:\n  - row: 1\n    buttons:\n      - button_text: A\n",
		"duplicate id":  "version: \"1\"\nrows:\n  - row: 1\n    buttons:\n      - id: 1\n  - row: 2\n    buttons:\n      - id: 1\n",
		"order field":   "version: \"1\"\nrows:\n  - row: 1\n    buttons:\n      - id: 1\n        order_in_row: 3\n",
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeLayout(strings.NewReader(payload))
			assert.Error(t, err)
		})
	}
}

func TestDecodeLayoutDefaultsVersion(t *testing.T) {
	doc, err := DecodeLayout(strings.NewReader("rows:\n  - row: 2\n    buttons:\n      - id: 7\n"))
	require.NoError(t, err)
	assert.Equal(t, LayoutVersion, doc.Version)
}

func TestApplyLayoutMovesKnownButtons(t *testing.T) {
	gw := newStubButtonGateway(sampleButtons()...)
	editor := loadedEditor(t, gw)

	const payload = `
version: "1"
rows:
  - row: 1
    buttons:
      - id: 3
      - id: 1
  - row: 2
    buttons:
      - id: 2
      - id: 42
`
	doc, err := DecodeLayout(strings.NewReader(payload))
	require.NoError(t, err)

	unknown, err := editor.ApplyLayout(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, unknown)

	state := editor.State()
	assert.True(t, state.DirtyOrder)
	require.Equal(t, []int{1, 2, 3}, rowNumbers(state.Rows))
	assert.Equal(t, []int64{3, 1}, rowIDs(state.Rows[0]))
	assert.Equal(t, []int64{2}, rowIDs(state.Rows[1]))
	assert.Empty(t, state.Rows[2].Buttons)
	assert.Zero(t, gw.networkCalls())

	require.NoError(t, editor.SaveOrder(context.Background()))
	assert.Equal(t, []ButtonPosition{
		{ID: 1, RowNumber: 1, OrderInRow: 1},
		{ID: 2, RowNumber: 2, OrderInRow: 0},
		{ID: 3, RowNumber: 1, OrderInRow: 0},
	}, sortedPositions(gw.lastReorder))
}

func TestApplyLayoutWithOnlyUnknownIDsLeavesOrderClean(t *testing.T) {
	editor := loadedEditor(t, newStubButtonGateway(sampleButtons()...))

	unknown, err := editor.ApplyLayout(context.Background(), &LayoutDocument{
		Version: LayoutVersion,
		Rows:    []LayoutRow{{Row: 1, Buttons: []BotButton{{ID: 77}}}},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{77}, unknown)
	assert.False(t, editor.State().DirtyOrder)

	_, err = editor.ApplyLayout(context.Background(), nil)
	assert.Error(t, err)
}

func TestReadLayoutSetsSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"1\"\nrows: []\n"), 0o600))

	doc, err := ReadLayout(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Source)

	_, err = ReadLayout(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
