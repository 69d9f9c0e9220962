package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

type globals struct {
	Config   string `short:"c" type:"path" help:"Config file (yaml, json or toml). SALON_* variables override it."`
	InitData string `name:"init-data" env:"SALON_INIT_DATA" help:"Telegram Mini App init data sent with every backend request."`
	Locale   string `help:"Override app.locale for rendered text."`
	Demo     bool   `help:"Use built-in demo data instead of the backend."`
	Yes      bool   `short:"y" help:"Answer yes to every confirmation."`
	JSON     bool   `name:"json" help:"Print JSON instead of tables."`
}

type cli struct {
	Globals globals `embed:""`

	Content      contentCmd      `cmd:"" help:"Show storefront promotions, services and masters."`
	Promotion    promotionCmd    `cmd:"" help:"Show one promotion with its call to action."`
	Profile      profileCmd      `cmd:"" help:"Show the profile bound to the init data."`
	History      historyCmd      `cmd:"" help:"Show a transaction history."`
	Chart        chartCmd        `cmd:"" help:"Render the balance chart as HTML."`
	Buttons      buttonsCmd      `cmd:"" help:"Edit the bot reply keyboard."`
	Admin        adminCmd        `cmd:"" help:"Manage users, masters, services, promotions and broadcasts."`
	Settings     settingsCmd     `cmd:"" help:"List or change backend settings."`
	Broadcasts   broadcastsCmd   `cmd:"" help:"Inspect, send or delete broadcasts."`
	Transactions transactionsCmd `cmd:"" help:"List or add loyalty transactions."`
	Upload       uploadCmd       `cmd:"" help:"Upload an image and print its URL."`
	Serve        serveCmd        `cmd:"" help:"Serve the console API, /metrics and /health."`
}

func main() {
	var root cli
	kctx := kong.Parse(&root,
		kong.Description("Operator console for the salon loyalty Mini App backend."),
		kong.UsageOnError(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newApp(ctx, root.Globals)
	defer a.close()
	kctx.FatalIfErrorf(kctx.Run(a))
}
