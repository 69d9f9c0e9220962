package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goliatone/go-salon/components/salon"
	"github.com/goliatone/go-salon/components/salon/queries"
)

type contentCmd struct{}

func (cmd *contentCmd) Run(a *app) error {
	storefront, err := a.storefront()
	if err != nil {
		return err
	}
	view, err := queries.NewStorefrontQuery(storefront).Query(a.ctx, queries.StorefrontInput{})
	if err != nil {
		return err
	}
	if view.ContentErr != nil {
		a.prompt().Alert(a.ctx, view.ContentErr.Error())
	}
	if a.JSON {
		return printJSON(a.stdout, view.Cards)
	}
	sections := []struct {
		name string
		list salon.CardList
	}{
		{"promotions", view.Cards.Promotions},
		{"services", view.Cards.Services},
		{"masters", view.Cards.Masters},
	}
	for _, section := range sections {
		fmt.Fprintf(a.stdout, "== %s\n", section.name)
		if len(section.list.Cards) == 0 {
			fmt.Fprintln(a.stdout, section.list.Empty)
			continue
		}
		t := newTable(a.stdout, "id", "title", "subtitle", "badge")
		for _, card := range section.list.Cards {
			t.row(card.ID, card.Title, card.Subtitle, card.Badge)
		}
		if err := t.flush(); err != nil {
			return err
		}
	}
	fmt.Fprintf(a.stdout, "booking: %s\n", view.BookingURL)
	return nil
}

type promotionCmd struct {
	ID int64 `arg:"" help:"Promotion id."`
}

func (cmd *promotionCmd) Run(a *app) error {
	if err := a.setup(); err != nil {
		return err
	}
	view, err := queries.NewPromotionDetailQuery(a.contentSource(), a.cfg.App.BookingURL).
		Query(a.ctx, queries.PromotionInput{ID: cmd.ID, Locale: a.locale()})
	if err != nil {
		return err
	}
	if a.JSON {
		return printJSON(a.stdout, view)
	}
	fmt.Fprintf(a.stdout, "%s\n%s\n", view.Promotion.Title, view.Promotion.Description)
	if detail := deref(view.Promotion.DetailText); detail != "" {
		fmt.Fprintln(a.stdout, detail)
	}
	if view.EndDate != "" {
		fmt.Fprintf(a.stdout, "until %s\n", view.EndDate)
	}
	fmt.Fprintf(a.stdout, "%s: %s\n", view.ActionText, view.ActionURL)
	return nil
}

type profileCmd struct{}

func (cmd *profileCmd) Run(a *app) error {
	storefront, err := a.storefront()
	if err != nil {
		return err
	}
	view := storefront.Load(a.ctx)
	if view.ProfileErr != nil {
		a.prompt().Alert(a.ctx, view.ProfileErr.Error())
	}
	if a.JSON {
		return printJSON(a.stdout, view.Profile)
	}
	user := view.Profile.Profile.User
	t := newTable(a.stdout, "name", "phone", "balance", "level", "admin")
	t.row(user.Name, user.Phone, user.Balance, user.Level, yesNo(view.Profile.Profile.IsAdmin))
	if err := t.flush(); err != nil {
		return err
	}
	if view.Profile.Placeholder {
		fmt.Fprintln(a.stdout, "(placeholder profile)")
	}
	return nil
}

type historyCmd struct {
	User int64 `help:"Show the history of this user id (admin). Defaults to the init data user."`
}

func (cmd *historyCmd) Run(a *app) error {
	if err := a.setup(); err != nil {
		return err
	}
	var lister interface {
		UserTransactions(ctx context.Context, userID int64) ([]salon.Transaction, error)
	}
	if cmd.User != 0 {
		admin, err := a.admin()
		if err != nil {
			return err
		}
		lister = admin
	}
	view, err := queries.NewHistoryQuery(a.profileSource(), lister).
		Query(a.ctx, queries.HistoryInput{UserID: cmd.User, Locale: a.locale()})
	if err != nil {
		return err
	}
	if a.JSON {
		return printJSON(a.stdout, view)
	}
	if len(view.Entries) == 0 {
		fmt.Fprintln(a.stdout, view.Empty)
		return nil
	}
	t := newTable(a.stdout, "date", "amount", "description", "expires")
	for _, entry := range view.Entries {
		expires := ""
		if entry.Expiry != nil {
			expires = entry.Expiry.Text
		}
		t.row(entry.Date, entry.Amount, entry.Description, expires)
	}
	return t.flush()
}

type chartCmd struct {
	Out   string `short:"o" type:"path" help:"Write the HTML here instead of stdout."`
	Theme string `help:"go-echarts theme. Defaults to chart.theme."`
}

func (cmd *chartCmd) Run(a *app) error {
	if err := a.setup(); err != nil {
		return err
	}
	theme := cmd.Theme
	if theme == "" {
		theme = a.cfg.Chart.Theme
	}
	cache := salon.NewChartCache(a.cfg.Chart.CacheTTL)
	html, err := queries.NewBalanceChartQuery(a.profileSource(), cache, "").
		Query(a.ctx, queries.BalanceChartInput{Theme: theme, Locale: a.locale()})
	if err != nil {
		return err
	}
	if cmd.Out == "" {
		_, err = fmt.Fprint(a.stdout, html)
		return err
	}
	if err := os.WriteFile(cmd.Out, []byte(html), 0o644); err != nil {
		return fmt.Errorf("salonctl: write chart: %w", err)
	}
	fmt.Fprintf(a.stdout, "✓ chart written to %s\n", cmd.Out)
	return nil
}
