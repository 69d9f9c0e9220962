package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/goliatone/go-salon/components/salon"
)

const buttonsPath = "/api/admin/bot-buttons"

var _ salon.ButtonGateway = (*Client)(nil)

// ListButtons returns every bot button, ordered by the backend.
func (c *Client) ListButtons(ctx context.Context) ([]salon.BotButton, error) {
	var buttons []salon.BotButton
	if err := c.do(ctx, http.MethodGet, buttonsPath, nil, nil, &buttons); err != nil {
		return nil, err
	}
	if buttons == nil {
		buttons = []salon.BotButton{}
	}
	return buttons, nil
}

// CreateButton persists a new button and returns it with its id.
func (c *Client) CreateButton(ctx context.Context, button salon.BotButton) (salon.BotButton, error) {
	button.ID = 0
	var created salon.BotButton
	if err := c.do(ctx, http.MethodPost, buttonsPath, nil, button, &created); err != nil {
		return salon.BotButton{}, err
	}
	if created.ID == 0 {
		return salon.BotButton{}, fmt.Errorf("apiclient: create button: backend returned no record")
	}
	return created, nil
}

// UpdateButton replaces the stored fields of button id.
func (c *Client) UpdateButton(ctx context.Context, id int64, button salon.BotButton) (salon.BotButton, error) {
	button.ID = 0
	var updated salon.BotButton
	if err := c.do(ctx, http.MethodPut, buttonPath(id), nil, button, &updated); err != nil {
		return salon.BotButton{}, err
	}
	if updated.ID == 0 {
		// empty body: the backend matched no row
		updated = button
		updated.ID = id
	}
	return updated, nil
}

func (c *Client) DeleteButton(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, buttonPath(id), nil, nil, nil)
}

// ReorderButtons persists every position in one batch call.
func (c *Client) ReorderButtons(ctx context.Context, items []salon.ButtonPosition) error {
	if items == nil {
		items = []salon.ButtonPosition{}
	}
	payload := struct {
		Items []salon.ButtonPosition `json:"items"`
	}{Items: items}
	return c.do(ctx, http.MethodPost, buttonsPath+"/reorder", nil, payload, nil)
}

func buttonPath(id int64) string {
	return buttonsPath + "/" + strconv.FormatInt(id, 10)
}
