package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-salon/components/salon"
	"github.com/goliatone/go-salon/components/salon/gorouter"
	"github.com/goliatone/go-salon/components/salon/httpapi"
	"github.com/goliatone/go-salon/pkg/logger"
	"github.com/goliatone/go-salon/pkg/server"
)

type serveCmd struct {
	Addr        string `help:"Console listen address. Defaults to console.addr."`
	MetricsAddr string `name:"metrics-addr" help:"Listen address for /metrics and /health. Defaults to metrics.addr."`
	Engine      string `enum:"fiber,http" default:"fiber" help:"fiber serves the console through go-router; http mounts it next to /metrics on one net/http server."`
	BasePath    string `name:"base-path" default:"/console" help:"Prefix for console routes."`
	BaseURL     string `name:"base-url" help:"Mini App origin used for keyboard previews."`
}

func (cmd *serveCmd) Run(a *app) error {
	console, err := cmd.console(a)
	if err != nil {
		return err
	}
	addr := firstSet(cmd.Addr, a.cfg.Console.Addr)
	metricsAddr := firstSet(cmd.MetricsAddr, a.cfg.Metrics.Addr)

	if cmd.Engine == "http" {
		ops := server.New(server.Options{
			Addr:     addr,
			Gatherer: a.registry,
			Logger:   a.log,
			Mount:    func(mux *http.ServeMux) { console.Mount(mux, cmd.BasePath) },
		})
		return runServers(a.ctx, a.log, ops)
	}

	adapter := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:   adapter.Router(),
		Console:  console,
		BasePath: cmd.BasePath,
	}); err != nil {
		return err
	}
	servers := []runner{fiberRunner{addr: addr, server: adapter, log: a.log}}
	if a.cfg.Metrics.Enabled {
		servers = append(servers, server.New(server.Options{Addr: metricsAddr, Gatherer: a.registry, Logger: a.log}))
	}
	return runServers(a.ctx, a.log, servers...)
}

// console builds the handlers. Admin endpoints are mounted only when a
// backend is configured.
func (cmd *serveCmd) console(a *app) (*httpapi.Handlers, error) {
	editor, err := a.editor()
	if err != nil {
		return nil, err
	}
	storefront, err := a.storefront()
	if err != nil {
		return nil, err
	}
	opts := httpapi.ConsoleOptions{
		Editor:     editor,
		Storefront: storefront,
		Profile:    a.profileSource(),
		ChartCache: salon.NewChartCache(a.cfg.Chart.CacheTTL),
		Telemetry:  a.telemetry(),
		BaseURL:    cmd.BaseURL,
	}
	if admin, err := a.admin(); err == nil {
		opts.Admin = admin
	}
	return httpapi.NewConsole(opts), nil
}

type runner interface {
	Start() error
	Shutdown(ctx context.Context) error
}

type fiberRunner struct {
	addr   string
	server router.Server[*fiber.App]
	log    logger.ILogger
}

func (r fiberRunner) Start() error {
	r.log.Info("console listening", logger.String("addr", r.addr))
	return r.server.Serve(r.addr)
}

func (r fiberRunner) Shutdown(ctx context.Context) error {
	return r.server.Shutdown(ctx)
}

// runServers starts every runner and shuts all of them down when ctx ends or
// one of them fails.
func runServers(ctx context.Context, log logger.ILogger, runners ...runner) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, r := range runners {
		g.Go(r.Start)
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, r := range runners {
			if err := r.Shutdown(shutdownCtx); err != nil {
				log.Warning("shutdown failed", logger.Error(err))
			}
		}
		return nil
	})
	return g.Wait()
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
