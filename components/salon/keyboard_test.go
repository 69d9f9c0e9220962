package salon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyboardTexts(preview KeyboardPreview) [][]string {
	out := make([][]string, 0, len(preview.Markup.Keyboard))
	for _, row := range preview.Markup.Keyboard {
		line := make([]string, 0, len(row))
		for _, b := range row {
			line = append(line, b.Text)
		}
		out = append(out, line)
	}
	return out
}

func TestKeyboardMarkupFiltersButtons(t *testing.T) {
	rows := BuildRows([]BotButton{
		{ID: 1, ButtonText: "Запись", RowNumber: 1, OrderInRow: 1, IsActive: true, WebAppURL: strPtr("https://salon.example")},
		{ID: 2, ButtonText: "Профиль", RowNumber: 1, OrderInRow: 0, IsActive: true},
		{ID: 3, ButtonText: "Скрытая", RowNumber: 2, IsActive: false},
		{ID: 4, ButtonText: "Админка", RowNumber: 3, IsActive: true, IsAdminOnly: true},
	}, []int{5})

	client := KeyboardMarkup(rows, KeyboardAudience{})
	assert.False(t, client.Fallback)
	assert.True(t, client.Markup.ResizeKeyboard)
	assert.Equal(t, [][]string{{"Профиль", "Запись"}}, keyboardTexts(client))
	assert.Equal(t, map[string]string{"Запись": "https://salon.example"}, client.WebApps)

	admin := KeyboardMarkup(rows, KeyboardAudience{Admin: true})
	assert.Equal(t, [][]string{{"Профиль", "Запись"}, {"Админка"}}, keyboardTexts(admin))
}

func TestKeyboardMarkupFallsBackToDefault(t *testing.T) {
	rows := BuildRows([]BotButton{{ID: 1, ButtonText: "Off", RowNumber: 1}}, nil)

	preview := KeyboardMarkup(rows, KeyboardAudience{BaseURL: "http://localhost:8000"})
	require.True(t, preview.Fallback)
	assert.Equal(t, [][]string{
		{"📅 Записаться"},
		{"👤 Мой профиль", "🌸 Наши услуги"},
		{"🎁 Бонусы", "📍 Контакты"},
		{"💬 Поддержка"},
	}, keyboardTexts(preview))
	assert.Nil(t, preview.WebApps)

	admin := KeyboardMarkup(nil, KeyboardAudience{Admin: true, BaseURL: "https://salon.example/"})
	texts := keyboardTexts(admin)
	assert.Equal(t, []string{"⚙️ Админка"}, texts[len(texts)-1])
	assert.Equal(t, "https://salon.example", admin.WebApps["📅 Записаться"])
}

func TestEditorPreviewUsesCurrentGrid(t *testing.T) {
	editor := loadedEditor(t, newStubButtonGateway(sampleButtons()...))

	require.NoError(t, editor.BeginMove(3))
	require.NoError(t, editor.CommitMove(t.Context(), 1, 0))

	preview := editor.Preview(KeyboardAudience{})
	assert.Equal(t, [][]string{{"Контакты", "Профиль", "Запись"}}, keyboardTexts(preview))
}
