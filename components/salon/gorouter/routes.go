package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-salon/components/salon"
	"github.com/goliatone/go-salon/components/salon/commands"
	"github.com/goliatone/go-salon/components/salon/httpapi"
	"github.com/goliatone/go-salon/components/salon/queries"
)

// Config wires go-router with the salon console handlers.
type Config[T any] struct {
	Router   router.Router[T]
	Console  *httpapi.Handlers
	BasePath string
}

// Register mounts the console routes on a go-router router. Endpoints whose
// command or query is not configured are skipped.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Console == nil {
		return errors.New("gorouter: console handlers are required")
	}
	base := cfg.BasePath
	if base == "" {
		base = "/console"
	}
	h := cfg.Console
	group := cfg.Router.Group(base)

	if h.State != nil {
		group.Get("/buttons", router.WrapHandler(func(ctx router.Context) error {
			return respondState(ctx, h, http.StatusOK)
		}))
	}
	if h.Reload != nil {
		group.Post("/buttons/reload", router.WrapHandler(func(ctx router.Context) error {
			if err := h.Reload.Execute(ctx.Context(), commands.ReloadButtonsInput{}); err != nil {
				return respondError(ctx, err)
			}
			return respondState(ctx, h, http.StatusOK)
		}))
	}
	if h.Select != nil {
		group.Post("/buttons/select", router.WrapHandler(func(ctx router.Context) error {
			var payload commands.SelectButtonInput
			if err := decodeBody(ctx.Body(), &payload); err != nil {
				return respondStatus(ctx, http.StatusBadRequest, err)
			}
			if err := h.Select.Execute(ctx.Context(), payload); err != nil {
				return respondError(ctx, err)
			}
			return respondState(ctx, h, http.StatusOK)
		}))
	}
	if h.Draft != nil {
		group.Post("/buttons/draft", router.WrapHandler(func(ctx router.Context) error {
			var payload commands.CreateDraftInput
			if err := decodeBody(ctx.Body(), &payload); err != nil {
				return respondStatus(ctx, http.StatusBadRequest, err)
			}
			if err := h.Draft.Execute(ctx.Context(), payload); err != nil {
				return respondError(ctx, err)
			}
			return respondState(ctx, h, http.StatusCreated)
		}))
	}
	if h.AddRow != nil {
		group.Post("/buttons/rows", router.WrapHandler(func(ctx router.Context) error {
			if err := h.AddRow.Execute(ctx.Context(), commands.AddRowInput{}); err != nil {
				return respondError(ctx, err)
			}
			return respondState(ctx, h, http.StatusCreated)
		}))
	}
	if h.Move != nil {
		group.Post("/buttons/move", router.WrapHandler(func(ctx router.Context) error {
			var payload commands.MoveButtonInput
			if err := decodeBody(ctx.Body(), &payload); err != nil {
				return respondStatus(ctx, http.StatusBadRequest, err)
			}
			if err := h.Move.Execute(ctx.Context(), payload); err != nil {
				return respondError(ctx, err)
			}
			return respondState(ctx, h, http.StatusOK)
		}))
	}
	if h.Save != nil {
		group.Post("/buttons/save", router.WrapHandler(func(ctx router.Context) error {
			var payload commands.SaveButtonInput
			if err := decodeBody(ctx.Body(), &payload); err != nil {
				return respondStatus(ctx, http.StatusBadRequest, err)
			}
			if err := h.Save.Execute(ctx.Context(), payload); err != nil {
				return respondError(ctx, err)
			}
			return respondState(ctx, h, http.StatusOK)
		}))
	}
	if h.Delete != nil {
		group.Delete("/buttons/selected", router.WrapHandler(func(ctx router.Context) error {
			if err := h.Delete.Execute(ctx.Context(), commands.DeleteButtonInput{}); err != nil {
				return respondError(ctx, err)
			}
			return respondState(ctx, h, http.StatusOK)
		}))
	}
	if h.SaveOrder != nil {
		group.Post("/buttons/order", router.WrapHandler(func(ctx router.Context) error {
			if err := h.SaveOrder.Execute(ctx.Context(), commands.SaveOrderInput{}); err != nil {
				return respondError(ctx, err)
			}
			return respondState(ctx, h, http.StatusOK)
		}))
	}
	if h.Preview != nil {
		group.Get("/buttons/preview", router.WrapHandler(func(ctx router.Context) error {
			admin, _ := strconv.ParseBool(strings.TrimSpace(ctx.Query("admin")))
			preview, err := h.Preview.Query(ctx.Context(), salon.KeyboardAudience{
				Admin:   admin,
				BaseURL: h.BaseURL,
				Locale:  inferLocale(ctx),
			})
			if err != nil {
				return respondError(ctx, err)
			}
			return ctx.JSON(http.StatusOK, preview)
		}))
	}
	if h.Layout != nil {
		group.Get("/buttons/layout", router.WrapHandler(func(ctx router.Context) error {
			var buf bytes.Buffer
			if err := h.Layout.ExportLayout(&buf); err != nil {
				return respondError(ctx, err)
			}
			ctx.SetHeader("Content-Type", "application/yaml; charset=utf-8")
			return ctx.Send(buf.Bytes())
		}))
	}
	if h.Storefront != nil {
		group.Get("/storefront", router.WrapHandler(func(ctx router.Context) error {
			view, err := h.Storefront.Query(ctx.Context(), queries.StorefrontInput{})
			if err != nil {
				return respondError(ctx, err)
			}
			return ctx.JSON(http.StatusOK, httpapi.StorefrontPayload(view))
		}))
	}
	if h.Chart != nil {
		group.Get("/chart", router.WrapHandler(func(ctx router.Context) error {
			html, err := h.Chart.Query(ctx.Context(), queries.BalanceChartInput{
				Theme:  ctx.Query("theme"),
				Locale: inferLocale(ctx),
			})
			if err != nil {
				return respondError(ctx, err)
			}
			ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
			return ctx.Send([]byte(html))
		}))
	}
	if h.Records != nil {
		group.Get("/admin/:kind", router.WrapHandler(func(ctx router.Context) error {
			kind, err := salon.ParseKind(ctx.Param("kind"))
			if err != nil {
				return respondError(ctx, err)
			}
			view, err := h.Records.Query(ctx.Context(), queries.RecordsInput{Kind: kind})
			if err != nil {
				return respondError(ctx, err)
			}
			return ctx.JSON(http.StatusOK, view)
		}))
	}
	if h.Settings != nil {
		group.Get("/settings", router.WrapHandler(func(ctx router.Context) error {
			settings, err := h.Settings.Query(ctx.Context(), queries.SettingsInput{})
			if err != nil {
				return respondError(ctx, err)
			}
			return ctx.JSON(http.StatusOK, map[string]any{"settings": settings})
		}))
	}
	return nil
}

func respondState(ctx router.Context, h *httpapi.Handlers, status int) error {
	if h.State == nil {
		return ctx.JSON(status, map[string]string{"status": "ok"})
	}
	state, err := h.State.Query(ctx.Context(), queries.ButtonsStateInput{})
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(status, state)
}

// decodeBody treats an empty body as a zero payload.
func decodeBody(body []byte, target any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, target)
}

func respondError(ctx router.Context, err error) error {
	return respondStatus(ctx, httpapi.StatusFor(err), err)
}

func respondStatus(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func inferLocale(ctx router.Context) string {
	if locale, ok := ctx.Locals("locale").(string); ok && locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(ctx.Query("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	if header := ctx.Header("Accept-Language"); header != "" {
		token, _, _ := strings.Cut(header, ",")
		token, _, _ = strings.Cut(token, ";")
		return strings.ToLower(strings.TrimSpace(token))
	}
	return ""
}
