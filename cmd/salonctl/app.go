package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/goliatone/go-salon/components/salon"
	"github.com/goliatone/go-salon/pkg/apiclient"
	"github.com/goliatone/go-salon/pkg/config"
	"github.com/goliatone/go-salon/pkg/logger"
)

var errDemoAdmin = errors.New("salonctl: admin commands need a backend, drop --demo")

// app is bound into every command's Run. Collaborators are built on first use
// so read-only commands never touch the admin surface.
type app struct {
	globals
	ctx context.Context

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfg      config.Config
	log      logger.ILogger
	registry *prometheus.Registry
	ready    bool

	client  *apiclient.Client
	mock    *apiclient.MockClient
	adminGW salon.AdminGateway
}

func newApp(ctx context.Context, g globals) *app {
	return &app{
		globals: g,
		ctx:     ctx,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
}

func (a *app) setup() error {
	if a.ready {
		return nil
	}
	cfg, err := config.Load(a.Config)
	if err != nil {
		return err
	}
	if a.Locale != "" {
		cfg.App.Locale = a.Locale
	}
	if a.InitData != "" {
		cfg.API.InitData = a.InitData
	}
	if !a.Demo {
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if a.log == nil {
		log, err := logger.New("salonctl", logger.Options{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
			Output: []string{"stderr"},
		})
		if err != nil {
			return fmt.Errorf("salonctl: logger: %w", err)
		}
		a.log = log
	}
	a.cfg = cfg
	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if a.Demo {
		a.mock = apiclient.NewMockClient(apiclient.DemoData())
		a.ready = true
		return nil
	}
	client, err := apiclient.New(apiclient.Config{
		BaseURL:    cfg.API.BaseURL,
		InitData:   cfg.API.InitData,
		Timeout:    cfg.API.Timeout,
		Logger:     a.log,
		Registerer: a.metricsRegisterer(),
		Namespace:  cfg.Metrics.Namespace,
	})
	if err != nil {
		return err
	}
	a.client = client
	a.ready = true
	return nil
}

func (a *app) metricsRegisterer() prometheus.Registerer {
	if !a.cfg.Metrics.Enabled {
		return nil
	}
	return a.registry
}

func (a *app) close() {
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func (a *app) locale() string { return a.cfg.App.Locale }

func (a *app) telemetry() *logger.Telemetry { return logger.NewTelemetry(a.log) }

func (a *app) buttonGateway() salon.ButtonGateway {
	if a.mock != nil {
		return a.mock
	}
	return a.client
}

func (a *app) contentSource() salon.ContentSource {
	if a.mock != nil {
		return a.mock
	}
	return a.client
}

func (a *app) profileSource() salon.ProfileSource {
	if a.mock != nil {
		return a.mock
	}
	return a.client
}

func (a *app) adminGateway() (salon.AdminGateway, error) {
	switch {
	case a.adminGW != nil:
		return a.adminGW, nil
	case a.client != nil:
		return a.client, nil
	}
	return nil, errDemoAdmin
}

func (a *app) prompt() *terminalPrompt {
	return &terminalPrompt{in: a.stdin, out: a.stderr, assumeYes: a.Yes}
}

// editor returns a loaded editor.
func (a *app) editor() (*salon.Editor, error) {
	if err := a.setup(); err != nil {
		return nil, err
	}
	p := a.prompt()
	editor := salon.NewEditor(salon.EditorOptions{
		Gateway:   a.buttonGateway(),
		Confirmer: p,
		Alerter:   p,
		Telemetry: a.telemetry(),
		Locale:    a.locale(),
	})
	if err := editor.Load(a.ctx); err != nil {
		return nil, err
	}
	return editor, nil
}

func (a *app) admin() (*salon.Admin, error) {
	if err := a.setup(); err != nil {
		return nil, err
	}
	gw, err := a.adminGateway()
	if err != nil {
		return nil, err
	}
	p := a.prompt()
	return salon.NewAdmin(salon.AdminOptions{
		Gateway:   gw,
		Confirmer: p,
		Alerter:   p,
		Telemetry: a.telemetry(),
		Locale:    a.locale(),
		Location:  a.cfg.Location(),
	}), nil
}

func (a *app) storefront() (*salon.Storefront, error) {
	if err := a.setup(); err != nil {
		return nil, err
	}
	return salon.NewStorefront(salon.StorefrontOptions{
		Content:    a.contentSource(),
		Profile:    a.profileSource(),
		InitData:   a.initData(),
		BookingURL: a.cfg.App.BookingURL,
		Locale:     a.locale(),
		Telemetry:  a.telemetry(),
	}), nil
}

func (a *app) initData() string {
	if a.client != nil {
		return a.client.InitData()
	}
	if data := strings.TrimSpace(a.cfg.API.InitData); data != "" {
		return data
	}
	// demo profile is served regardless of the caller
	return "hash=demo"
}
