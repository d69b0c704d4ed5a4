package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"inventoryapi/internal/config"
	"inventoryapi/internal/health"
	"inventoryapi/internal/inventory"
	"inventoryapi/internal/platform/observability"

	"go.uber.org/zap"
)

// Inventory is the pipeline the handlers drive. *inventory.Service
// satisfies it.
type Inventory interface {
	Get(ctx context.Context, sku string) (inventory.Record, error)
	Search(ctx context.Context, title string) ([]inventory.Record, error)
	Save(ctx context.Context, form url.Values) (inventory.Record, error)
	Delete(ctx context.Context, form url.Values) (inventory.Record, error)
}

// Readiness is satisfied by *health.Probe.
type Readiness interface {
	Check(ctx context.Context) health.Report
}

// RequestObserver records per-route request latency.
type RequestObserver interface {
	ObserveRequest(route string, code int, elapsed time.Duration)
}

const readinessFailed = "readiness check failed"

type Handler struct {
	inventory Inventory
	readiness Readiness
	observer  RequestObserver
	metrics   http.Handler
	logger    observability.Logger
}

func NewHandler(
	inv Inventory,
	readiness Readiness,
	observer RequestObserver,
	metrics http.Handler,
	logger observability.Logger,
) *Handler {
	return &Handler{
		inventory: inv,
		readiness: readiness,
		observer:  observer,
		metrics:   metrics,
		logger:    logger,
	}
}

// Routes returns the service mux wrapped in access logging.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /alive", h.Alive)
	mux.HandleFunc("GET /ready", h.Ready)
	mux.HandleFunc("GET /api/inventory", h.GetInventory)
	mux.HandleFunc("GET /api/find/inventory", h.FindInventory)
	mux.HandleFunc("POST /api/inventory", h.SaveInventory)
	mux.HandleFunc("DELETE /api/inventory", h.DeleteInventory)
	mux.Handle("GET /metrics", h.metrics)

	return accessLog(h.logger, h.observer, mux)
}

func (h *Handler) Alive(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "OK")
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	report := h.readiness.Check(r.Context())
	if !report.Ready() {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"code":    http.StatusInternalServerError,
			"message": readinessFailed,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"code":    http.StatusOK,
		"message": report.String(),
	})
}

func (h *Handler) GetInventory(w http.ResponseWriter, r *http.Request) {
	sku, err := queryValue(r, "sku")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rec, err := h.inventory.Get(r.Context(), sku)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) FindInventory(w http.ResponseWriter, r *http.Request) {
	title, err := queryValue(r, "title")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	records, err := h.inventory.Search(r.Context(), title)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) SaveInventory(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rec, err := h.inventory.Save(r.Context(), form)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, rec.Summary("Updated"))
}

func (h *Handler) DeleteInventory(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rec, err := h.inventory.Delete(r.Context(), form)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeText(w, http.StatusOK, rec.Summary("Deleted"))
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	msg := errorMessage(err)
	if msg.StatusCode >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("code", msg.Code),
			zap.Error(err),
		)
	}
	writeJSON(w, msg.StatusCode, msg)
}

// queryValue reads the named query parameter and falls back to the whole
// unescaped query string, so both ?sku=42 and ?42 resolve to "42". A query
// holding any key=value pair never falls back.
func queryValue(r *http.Request, name string) (string, error) {
	if v := r.URL.Query().Get(name); v != "" {
		return v, nil
	}
	if strings.Contains(r.URL.RawQuery, "=") {
		return "", fmt.Errorf("%w: %s", inventory.ErrMissingField, name)
	}
	raw, err := url.QueryUnescape(r.URL.RawQuery)
	if err != nil || raw == "" {
		return "", fmt.Errorf("%w: %s", inventory.ErrMissingField, name)
	}
	return raw, nil
}

// readForm parses a urlencoded body of at most config.MaxFormBytes. It reads
// the body itself because Request.ParseForm ignores DELETE bodies.
func readForm(w http.ResponseWriter, r *http.Request) (url.Values, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, config.MaxFormBytes))
	if err != nil {
		return nil, fmt.Errorf("reading form body: %w", err)
	}
	form, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("parsing form body: %w", err)
	}
	return form, nil
}

// writeJSON encodes before writing the header so an unencodable value turns
// into the internal error envelope instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorMessage{
			Code:       -5,
			StatusCode: http.StatusInternalServerError,
			Message:    internalErrorMessage,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, body)
}
