package salon

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONSchemaValidatorBotButtons(t *testing.T) {
	v := NewJSONSchemaValidator()
	valid := buttonRecord(BotButton{
		ButtonText:   "Запись",
		ResponseText: "ok",
		HandlerType:  HandlerBook,
		RowNumber:    1,
		IsActive:     true,
	})
	require.NoError(t, v.Validate(KindBotButtons, valid))

	invalid := map[string]map[string]any{
		"row":     {"row_number": 0},
		"order":   {"order_in_row": -1},
		"handler": {"handler_type": "menu"},
		"url":     {"web_app_url": 42},
	}
	for name, patch := range invalid {
		t.Run(name, func(t *testing.T) {
			record := map[string]any{}
			for k, val := range valid {
				record[k] = val
			}
			for k, val := range patch {
				record[k] = val
			}
			err := v.Validate(KindBotButtons, record)
			assert.True(t, IsValidation(err), "%v", err)
		})
	}
}

func TestJSONSchemaValidatorPartial(t *testing.T) {
	v := NewJSONSchemaValidator()
	assert.NoError(t, v.ValidatePartial(KindPromotions, map[string]any{"is_active": false}))
	assert.True(t, IsValidation(v.Validate(KindPromotions, map[string]any{"is_active": false})))
	assert.True(t, IsValidation(v.ValidatePartial(KindPromotions, map[string]any{"action_url": "javascript:alert(1)"})))

	// compiled schemas are cached per mode
	assert.NoError(t, v.ValidatePartial(KindPromotions, map[string]any{"title": "Весна"}))
	assert.Len(t, v.compiled, 2)
}

func TestJSONSchemaValidatorUnknownKindPasses(t *testing.T) {
	v := NewJSONSchemaValidator()
	assert.NoError(t, v.Validate(EntityKind("orders"), map[string]any{"x": 1}))
}

func TestKindsAndSpecs(t *testing.T) {
	for _, kind := range Kinds() {
		spec, err := SpecFor(kind)
		require.NoError(t, err, kind)
		assert.Equal(t, kind, spec.Kind)
		assert.NotEmpty(t, spec.Fields)
		assert.NotNil(t, kindSchema(kind), kind)
	}
	kind, err := ParseKind("Bot_Buttons")
	require.NoError(t, err)
	assert.Equal(t, KindBotButtons, kind)
	_, err = ParseKind("orders")
	assert.ErrorIs(t, err, ErrUnknownKind)

	movable := 0
	for _, kind := range Kinds() {
		spec, _ := SpecFor(kind)
		if spec.Capabilities.Move {
			movable++
		}
	}
	assert.Equal(t, 3, movable)
}

func TestDecodeRecordPerKind(t *testing.T) {
	raw := map[EntityKind]string{
		KindUsers:      `{"id":1,"name":"Анна","phone":"+7","balance":10,"level":"vip","active":true}`,
		KindMasters:    `{"id":2,"name":"Ольга"}`,
		KindServices:   `{"id":3,"title":"Стрижка","price":1200,"category":"Волосы","is_active":false}`,
		KindPromotions: `{"id":4,"title":"Весна","end_date":"2026-04-30","is_active":true}`,
		KindBroadcasts: `{"id":5,"message":"Привет","recipient_type":"all","status":"pending"}`,
		KindBotButtons: `{"id":6,"button_text":"Запись","handler_type":"book","row_number":1,"order_in_row":0,"is_active":true}`,
		KindSettings:   `{"key":"rate","value":0.1,"type":"float"}`,
	}
	for kind, payload := range raw {
		record, err := DecodeRecord(kind, json.RawMessage(payload))
		require.NoError(t, err, kind)
		assert.Equal(t, kind, record.RecordKind())
		assert.NotEmpty(t, Summarize(record).Title, kind)
	}

	user, _ := DecodeRecord(KindUsers, json.RawMessage(raw[KindUsers]))
	assert.Equal(t, "+7 · 10 · VIP", Summarize(user).Subtitle)
	service, _ := DecodeRecord(KindServices, json.RawMessage(raw[KindServices]))
	assert.Equal(t, Summary{Key: "3", Title: "Стрижка", Subtitle: "Волосы · 1200 ₽", Inactive: true}, Summarize(service))

	_, err := DecodeRecord(KindUsers, json.RawMessage(`[1,2]`))
	assert.Error(t, err)
	_, err = DecodeRecord(EntityKind("orders"), json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "Прив…", truncate("Привет", 4))
}

func TestResolveLocalizedValue(t *testing.T) {
	values := map[string]string{"default": "Привет", "en": "Hello", "pt-BR": "Olá"}
	assert.Equal(t, "Hello", ResolveLocalizedValue(values, "en-US", "x"))
	assert.Equal(t, "Olá", ResolveLocalizedValue(values, "pt_br", "x"))
	assert.Equal(t, "Привет", ResolveLocalizedValue(values, "ru", "x"))
	assert.Equal(t, "x", ResolveLocalizedValue(nil, "ru", "x"))
	assert.Equal(t, "missing.key", Message("missing.key", "en"))
}
