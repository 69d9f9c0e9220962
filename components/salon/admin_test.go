package salon

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdmin(gw *stubAdminGateway, confirm bool) (*Admin, *recordingAlerter, *stubConfirmer) {
	alerts := &recordingAlerter{}
	confirmer := &stubConfirmer{answer: confirm}
	admin := NewAdmin(AdminOptions{Gateway: gw, Alerter: alerts, Confirmer: confirmer})
	return admin, alerts, confirmer
}

func TestAdminListDecodesTypedRecords(t *testing.T) {
	gw := newStubAdminGateway()
	gw.records[KindMasters] = []json.RawMessage{
		json.RawMessage(`{"id":1,"name":"Анна","specialization":"Стилист"}`),
		json.RawMessage(`{"id":2,"name":"Ольга","specialization":""}`),
	}
	admin, _, _ := newTestAdmin(gw, true)

	records, err := admin.List(context.Background(), KindMasters)
	require.NoError(t, err)
	require.Len(t, records, 2)
	master, ok := records[0].(Master)
	require.True(t, ok)
	assert.Equal(t, "Анна", master.Name)
	assert.Equal(t, Summary{Key: "1", Title: "Анна", Subtitle: "Стилист"}, Summarize(master))

	_, err = admin.List(context.Background(), EntityKind("orders"))
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestAdminListFailureAlerts(t *testing.T) {
	gw := newStubAdminGateway()
	gw.err = errBackend
	admin, alerts, _ := newTestAdmin(gw, true)

	_, err := admin.List(context.Background(), KindServices)
	require.ErrorIs(t, err, errBackend)
	assert.Equal(t, 1, alerts.count())
	assert.True(t, strings.HasPrefix(alerts.messages[0], "Ошибка загрузки"))
}

func TestAdminSaveCreatesAndUpdates(t *testing.T) {
	gw := newStubAdminGateway()
	admin, _, _ := newTestAdmin(gw, true)

	record, err := admin.Save(context.Background(), KindServices, 0, map[string]any{
		"title": "Маникюр",
		"price": "1500",
	})
	require.NoError(t, err)
	service, ok := record.(Service)
	require.True(t, ok)
	assert.Equal(t, int64(1), service.ID)
	assert.Equal(t, 1500.0, service.Price)
	require.Len(t, gw.created, 1)

	record, err = admin.Save(context.Background(), KindUsers, 7, map[string]any{"balance": "10"})
	require.NoError(t, err)
	assert.Nil(t, record)
	assert.Equal(t, map[string]any{"balance": 10}, gw.updated[7])
}

func TestAdminSaveRejectsBeforeNetwork(t *testing.T) {
	gw := newStubAdminGateway()
	admin, alerts, _ := newTestAdmin(gw, true)

	_, err := admin.Save(context.Background(), KindServices, 0, map[string]any{"price": "10"})
	assert.True(t, IsValidation(err))
	_, err = admin.Save(context.Background(), KindServices, 0, map[string]any{"title": "X", "price": "-5"})
	assert.True(t, IsValidation(err))
	assert.Empty(t, gw.created)
	assert.Equal(t, 2, alerts.count())

	_, err = admin.Save(context.Background(), KindUsers, 0, map[string]any{"name": "A"})
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
	_, err = admin.Save(context.Background(), KindBroadcasts, 3, map[string]any{"message": "A"})
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
	_, err = admin.Save(context.Background(), KindBotButtons, 0, map[string]any{"button_text": "A"})
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
}

func TestAdminDeleteHonoursConfirmation(t *testing.T) {
	gw := newStubAdminGateway()
	admin, _, confirmer := newTestAdmin(gw, false)

	require.NoError(t, admin.Delete(context.Background(), KindMasters, 4))
	assert.Empty(t, gw.deleted)
	assert.Equal(t, []string{"Удалить запись?"}, confirmer.prompts)

	confirmer.answer = true
	require.NoError(t, admin.Delete(context.Background(), KindMasters, 4))
	assert.Equal(t, []int64{4}, gw.deleted)

	assert.ErrorIs(t, admin.Delete(context.Background(), KindUsers, 4), ErrUnsupportedOperation)
}

func TestAdminMove(t *testing.T) {
	gw := newStubAdminGateway()
	gw.edgeID = 9
	admin, _, _ := newTestAdmin(gw, true)

	moved, err := admin.Move(context.Background(), KindPromotions, 1, MoveUp)
	require.NoError(t, err)
	assert.True(t, moved)
	moved, err = admin.Move(context.Background(), KindServices, 9, MoveDown)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, []Direction{MoveUp, MoveDown}, gw.moved)

	_, err = admin.Move(context.Background(), KindBroadcasts, 1, MoveUp)
	assert.ErrorIs(t, err, ErrUnsupportedOperation)
	_, err = admin.Move(context.Background(), KindMasters, 1, Direction("left"))
	assert.True(t, IsValidation(err))

	d, err := ParseDirection(" DOWN ")
	require.NoError(t, err)
	assert.Equal(t, MoveDown, d)
}

func TestAdminTransactions(t *testing.T) {
	gw := newStubAdminGateway()
	admin, _, _ := newTestAdmin(gw, true)

	tx, err := admin.AddTransaction(context.Background(), 9, -40, "  ")
	require.NoError(t, err)
	assert.Equal(t, "Ручное изменение баланса", tx.Description)
	assert.Equal(t, "spend", tx.TransactionType)

	_, err = admin.AddTransaction(context.Background(), 9, 0, "")
	assert.True(t, IsValidation(err))

	txs, err := admin.UserTransactions(context.Background(), 9)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestAdminBroadcasts(t *testing.T) {
	gw := newStubAdminGateway()
	gw.records[KindBroadcasts] = []json.RawMessage{
		json.RawMessage(`{"id":5,"message":"Скидки","recipient_type":"all","status":"completed","sent_count":8,"failed_count":2}`),
	}
	admin, _, confirmer := newTestAdmin(gw, false)

	sent, err := admin.SendBroadcast(context.Background(), 5)
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Empty(t, gw.sent)

	confirmer.answer = true
	sent, err = admin.SendBroadcast(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, []int64{5}, gw.sent)

	b, err := admin.ViewBroadcast(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, BroadcastCompleted, b.Status)
	assert.Equal(t, "completed · all · 8/10", Summarize(b).Subtitle)

	require.NoError(t, admin.DeleteBroadcast(context.Background(), 5))
	assert.Equal(t, []int64{5}, gw.deleted)
}

func TestAdminSettings(t *testing.T) {
	gw := newStubAdminGateway()
	gw.settings = map[string]Setting{
		"points_ttl_days": {Value: 90, Type: SettingNumber, Description: "TTL"},
		"cashback_rate":   {Value: 0.05, Type: SettingFloat},
		"bot_enabled":     {Value: true, Type: SettingBoolean},
	}
	admin, _, _ := newTestAdmin(gw, true)

	settings, err := admin.Settings(context.Background())
	require.NoError(t, err)
	require.Len(t, settings, 3)
	assert.Equal(t, []string{"bot_enabled", "cashback_rate", "points_ttl_days"},
		[]string{settings[0].Key, settings[1].Key, settings[2].Key})

	value, err := admin.UpdateSetting(context.Background(), "points_ttl_days", "", "120")
	require.NoError(t, err)
	assert.Equal(t, 120, value)
	assert.Equal(t, 120, gw.saved["points_ttl_days"])

	value, err = admin.UpdateSetting(context.Background(), "bot_enabled", SettingBoolean, "false")
	require.NoError(t, err)
	assert.Equal(t, false, value)

	_, err = admin.UpdateSetting(context.Background(), "missing", "", "1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = admin.UpdateSetting(context.Background(), "cashback_rate", "", "lots")
	assert.True(t, IsValidation(err))

	records, err := admin.List(context.Background(), KindSettings)
	require.NoError(t, err)
	assert.Equal(t, "bot_enabled", records[0].RecordKey())
}

func TestAdminUpload(t *testing.T) {
	gw := newStubAdminGateway()
	admin, _, _ := newTestAdmin(gw, true)

	url, err := admin.Upload(context.Background(), "master-photo", "anna.jpg", strings.NewReader("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/masters/anna.jpg", url)

	gw.err = errBackend
	_, err = admin.Upload(context.Background(), "x", "a.png", strings.NewReader(""))
	assert.ErrorIs(t, err, errBackend)
}

func TestAdminRequiresGateway(t *testing.T) {
	admin := NewAdmin(AdminOptions{})
	_, err := admin.List(context.Background(), KindMasters)
	assert.ErrorIs(t, err, ErrGatewayRequired)
}
