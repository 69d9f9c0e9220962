package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-salon/components/salon"
	"github.com/goliatone/go-salon/components/salon/commands"
	"github.com/goliatone/go-salon/components/salon/queries"
)

// LayoutExporter writes the editor grid as a YAML layout document.
type LayoutExporter interface {
	ExportLayout(w io.Writer) error
}

// Handlers exposes the console endpoints backed by shared commands and
// queries. Mutating button endpoints answer with the fresh editor state.
type Handlers struct {
	Reload    gocommand.Commander[commands.ReloadButtonsInput]
	Select    gocommand.Commander[commands.SelectButtonInput]
	Draft     gocommand.Commander[commands.CreateDraftInput]
	AddRow    gocommand.Commander[commands.AddRowInput]
	Move      gocommand.Commander[commands.MoveButtonInput]
	Save      gocommand.Commander[commands.SaveButtonInput]
	Delete    gocommand.Commander[commands.DeleteButtonInput]
	SaveOrder gocommand.Commander[commands.SaveOrderInput]

	State      gocommand.Querier[queries.ButtonsStateInput, salon.EditorState]
	Preview    gocommand.Querier[salon.KeyboardAudience, salon.KeyboardPreview]
	Storefront gocommand.Querier[queries.StorefrontInput, salon.StorefrontView]
	Chart      gocommand.Querier[queries.BalanceChartInput, string]
	Records    gocommand.Querier[queries.RecordsInput, queries.RecordsView]
	Settings   gocommand.Querier[queries.SettingsInput, []salon.Setting]

	Layout LayoutExporter
	// BaseURL is the Mini App origin used for keyboard previews.
	BaseURL string
}

// Mount registers every configured endpoint under base (default "/console").
func (h *Handlers) Mount(mux *http.ServeMux, base string) {
	if base == "" {
		base = "/console"
	}
	base = strings.TrimRight(base, "/")
	handle := func(pattern string, ready bool, fn http.HandlerFunc) {
		if !ready {
			return
		}
		method, path, _ := strings.Cut(pattern, " ")
		mux.HandleFunc(method+" "+base+path, fn)
	}
	handle("GET /buttons", h.State != nil, h.HandleButtonsState)
	handle("POST /buttons/reload", h.Reload != nil, h.HandleReload)
	handle("POST /buttons/select", h.Select != nil, h.HandleSelect)
	handle("POST /buttons/draft", h.Draft != nil, h.HandleDraft)
	handle("POST /buttons/rows", h.AddRow != nil, h.HandleAddRow)
	handle("POST /buttons/move", h.Move != nil, h.HandleMove)
	handle("POST /buttons/save", h.Save != nil, h.HandleSave)
	handle("DELETE /buttons/selected", h.Delete != nil, h.HandleDelete)
	handle("POST /buttons/order", h.SaveOrder != nil, h.HandleSaveOrder)
	handle("GET /buttons/preview", h.Preview != nil, h.HandlePreview)
	handle("GET /buttons/layout", h.Layout != nil, h.HandleLayout)
	handle("GET /storefront", h.Storefront != nil, h.HandleStorefront)
	handle("GET /chart", h.Chart != nil, h.HandleChart)
	handle("GET /admin/{kind}", h.Records != nil, h.HandleRecords)
	handle("GET /settings", h.Settings != nil, h.HandleSettings)
}

// HandleButtonsState answers GET /buttons with the editor state.
func (h *Handlers) HandleButtonsState(w http.ResponseWriter, r *http.Request) {
	h.respondState(w, r, http.StatusOK)
}

// HandleReload refetches the buttons from the backend.
func (h *Handlers) HandleReload(w http.ResponseWriter, r *http.Request) {
	if err := h.Reload.Execute(r.Context(), commands.ReloadButtonsInput{}); err != nil {
		writeError(w, err)
		return
	}
	h.respondState(w, r, http.StatusOK)
}

// HandleSelect selects a button, or clears the selection for id 0.
func (h *Handlers) HandleSelect(w http.ResponseWriter, r *http.Request) {
	var payload commands.SelectButtonInput
	if !decode(w, r, &payload) {
		return
	}
	if err := h.Select.Execute(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	h.respondState(w, r, http.StatusOK)
}

// HandleDraft opens an unsaved button in the requested row.
func (h *Handlers) HandleDraft(w http.ResponseWriter, r *http.Request) {
	var payload commands.CreateDraftInput
	if !decode(w, r, &payload) {
		return
	}
	if err := h.Draft.Execute(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	h.respondState(w, r, http.StatusCreated)
}

// HandleAddRow appends an empty placeholder row.
func (h *Handlers) HandleAddRow(w http.ResponseWriter, r *http.Request) {
	if err := h.AddRow.Execute(r.Context(), commands.AddRowInput{}); err != nil {
		writeError(w, err)
		return
	}
	h.respondState(w, r, http.StatusCreated)
}

// HandleMove drops a button into a row at an index. The order stays unsaved.
func (h *Handlers) HandleMove(w http.ResponseWriter, r *http.Request) {
	var payload commands.MoveButtonInput
	if !decode(w, r, &payload) {
		return
	}
	if err := h.Move.Execute(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	h.respondState(w, r, http.StatusOK)
}

// HandleSave creates the draft or updates the selected button.
func (h *Handlers) HandleSave(w http.ResponseWriter, r *http.Request) {
	var payload commands.SaveButtonInput
	if !decode(w, r, &payload) {
		return
	}
	if err := h.Save.Execute(r.Context(), payload); err != nil {
		writeError(w, err)
		return
	}
	h.respondState(w, r, http.StatusOK)
}

// HandleDelete removes the selected button.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Delete.Execute(r.Context(), commands.DeleteButtonInput{}); err != nil {
		writeError(w, err)
		return
	}
	h.respondState(w, r, http.StatusOK)
}

// HandleSaveOrder persists the position of every button.
func (h *Handlers) HandleSaveOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.SaveOrder.Execute(r.Context(), commands.SaveOrderInput{}); err != nil {
		writeError(w, err)
		return
	}
	h.respondState(w, r, http.StatusOK)
}

// HandlePreview renders the reply keyboard. ?admin=true includes admin-only buttons.
func (h *Handlers) HandlePreview(w http.ResponseWriter, r *http.Request) {
	audience := salon.KeyboardAudience{
		Admin:   parseBool(r.URL.Query().Get("admin")),
		BaseURL: h.BaseURL,
		Locale:  r.URL.Query().Get("locale"),
	}
	preview, err := h.Preview.Query(r.Context(), audience)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// HandleLayout streams the grid as a YAML layout document.
func (h *Handlers) HandleLayout(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	if err := h.Layout.ExportLayout(w); err != nil {
		writeError(w, err)
	}
}

// HandleStorefront returns the Mini App storefront payload.
func (h *Handlers) HandleStorefront(w http.ResponseWriter, r *http.Request) {
	view, err := h.Storefront.Query(r.Context(), queries.StorefrontInput{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StorefrontPayload(view))
}

// HandleChart returns the balance chart as an HTML fragment.
func (h *Handlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	html, err := h.Chart.Query(r.Context(), queries.BalanceChartInput{
		Theme:  r.URL.Query().Get("theme"),
		Locale: r.URL.Query().Get("locale"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, html)
}

// HandleRecords lists the admin records of one kind.
func (h *Handlers) HandleRecords(w http.ResponseWriter, r *http.Request) {
	kind, err := salon.ParseKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, err)
		return
	}
	view, err := h.Records.Query(r.Context(), queries.RecordsInput{Kind: kind})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleSettings lists the backend settings.
func (h *Handlers) HandleSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.Query(r.Context(), queries.SettingsInput{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"settings": settings})
}

func (h *Handlers) respondState(w http.ResponseWriter, r *http.Request, status int) {
	if h.State == nil {
		w.WriteHeader(status)
		return
	}
	state, err := h.State.Query(r.Context(), queries.ButtonsStateInput{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, state)
}

// StorefrontPayload flattens a settled storefront for JSON clients; section
// failures become messages next to the fallback data.
func StorefrontPayload(view salon.StorefrontView) map[string]any {
	payload := map[string]any{
		"cards":       view.Cards,
		"profile":     view.Profile,
		"booking_url": view.BookingURL,
	}
	if view.ContentErr != nil {
		payload["content_error"] = view.ContentErr.Error()
	}
	if view.ProfileErr != nil {
		payload["profile_error"] = view.ProfileErr.Error()
	}
	return payload
}

// StatusFor maps domain errors onto HTTP statuses.
func StatusFor(err error) int {
	switch {
	case salon.IsValidation(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, salon.ErrUnknownButton), errors.Is(err, salon.ErrNotFound), errors.Is(err, salon.ErrUnknownKind):
		return http.StatusNotFound
	case errors.Is(err, salon.ErrNoSelection), errors.Is(err, salon.ErrNoActiveMove), errors.Is(err, salon.ErrDuplicateButtonText):
		return http.StatusConflict
	case errors.Is(err, salon.ErrUnsupportedOperation):
		return http.StatusMethodNotAllowed
	case errors.Is(err, salon.ErrNoInitData):
		return http.StatusUnauthorized
	}
	return http.StatusBadGateway
}

func decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(target); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusFor(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func parseBool(raw string) bool {
	ok, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && ok
}
