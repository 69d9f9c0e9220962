package apiclient

import (
	"context"
	"sort"
	"sync"

	"github.com/goliatone/go-salon/components/salon"
)

// MockData seeds deterministic backend responses for tests or local demos.
type MockData struct {
	Content salon.Content
	Profile salon.Profile
	Buttons []salon.BotButton
}

// MockClient implements the button, content and profile ports in memory.
type MockClient struct {
	mu     sync.RWMutex
	data   MockData
	nextID int64
}

var (
	_ salon.ButtonGateway = (*MockClient)(nil)
	_ salon.ContentSource = (*MockClient)(nil)
	_ salon.ProfileSource = (*MockClient)(nil)
)

// NewMockClient builds a mock client from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	var maxID int64
	for _, b := range data.Buttons {
		if b.ID > maxID {
			maxID = b.ID
		}
	}
	data.Buttons = append([]salon.BotButton(nil), data.Buttons...)
	return &MockClient{data: data, nextID: maxID + 1}
}

// DemoData returns the fixtures used by `salonctl serve --demo`.
func DemoData() MockData {
	webApp := "https://salon.example/app"
	return MockData{
		Content: salon.Content{
			Promotions: []salon.Promotion{{ID: 1, Title: "Весенний маникюр", Description: "Скидка 20%", IsActive: true}},
			Services:   []salon.Service{{ID: 1, Title: "Стрижка", Price: 1500, Category: "Волосы", IsActive: true}},
			Masters:    []salon.Master{{ID: 1, Name: "Анна", Specialization: "Стилист"}},
			BookingURL: salon.DefaultBookingURL,
		},
		Profile: salon.Profile{
			User:    salon.User{ID: 1, Name: "Мария", Phone: "+7 900 000-00-00", Balance: 350, Level: "silver"},
			History: []salon.Transaction{{ID: 1, Amount: 350, TransactionType: "earn", Description: "Визит", CreatedAt: "2026-03-01T10:00:00Z"}},
			Visits:  []salon.Visit{},
		},
		Buttons: []salon.BotButton{
			{ID: 1, ButtonText: "📅 Записаться", ResponseText: "Выберите удобное время", HandlerType: salon.HandlerBook, RowNumber: 1, OrderInRow: 0, WebAppURL: &webApp, IsActive: true},
			{ID: 2, ButtonText: "👤 Мой профиль", ResponseText: "Ваш профиль", HandlerType: salon.HandlerProfile, RowNumber: 1, OrderInRow: 1, IsActive: true},
			{ID: 3, ButtonText: "💬 Поддержка", ResponseText: "Напишите нам", HandlerType: salon.HandlerInfo, RowNumber: 2, OrderInRow: 0, IsActive: true},
		},
	}
}

func (c *MockClient) FetchContent(context.Context) (salon.Content, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	content := c.data.Content
	content.Promotions = append([]salon.Promotion{}, content.Promotions...)
	content.Services = append([]salon.Service{}, content.Services...)
	content.Masters = append([]salon.Master{}, content.Masters...)
	return content, nil
}

func (c *MockClient) FetchProfile(context.Context) (salon.Profile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	profile := c.data.Profile
	profile.History = append([]salon.Transaction{}, profile.History...)
	profile.Visits = append([]salon.Visit{}, profile.Visits...)
	return profile, nil
}

// ListButtons returns the buttons sorted by row, then order.
func (c *MockClient) ListButtons(context.Context) ([]salon.BotButton, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := append([]salon.BotButton{}, c.data.Buttons...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RowNumber != out[j].RowNumber {
			return out[i].RowNumber < out[j].RowNumber
		}
		return out[i].OrderInRow < out[j].OrderInRow
	})
	return out, nil
}

func (c *MockClient) CreateButton(_ context.Context, button salon.BotButton) (salon.BotButton, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	button.ID = c.nextID
	c.nextID++
	c.data.Buttons = append(c.data.Buttons, button)
	return button, nil
}

func (c *MockClient) UpdateButton(_ context.Context, id int64, button salon.BotButton) (salon.BotButton, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.data.Buttons {
		if c.data.Buttons[i].ID == id {
			button.ID = id
			c.data.Buttons[i] = button
			return button, nil
		}
	}
	return salon.BotButton{}, salon.ErrNotFound
}

func (c *MockClient) DeleteButton(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.data.Buttons {
		if c.data.Buttons[i].ID == id {
			c.data.Buttons = append(c.data.Buttons[:i], c.data.Buttons[i+1:]...)
			return nil
		}
	}
	return nil
}

func (c *MockClient) ReorderButtons(_ context.Context, items []salon.ButtonPosition) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	positions := make(map[int64]salon.ButtonPosition, len(items))
	for _, item := range items {
		positions[item.ID] = item
	}
	for i := range c.data.Buttons {
		if pos, ok := positions[c.data.Buttons[i].ID]; ok {
			c.data.Buttons[i].RowNumber = pos.RowNumber
			c.data.Buttons[i].OrderInRow = pos.OrderInRow
		}
	}
	return nil
}
