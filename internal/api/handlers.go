package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maltedev/product-compare/internal/backend"
	"github.com/maltedev/product-compare/internal/database"
	"github.com/maltedev/product-compare/internal/labeling"
	"github.com/maltedev/product-compare/internal/models"
)

// Labeler is implemented by labeling.Service.
type Labeler interface {
	SaveSelection(ctx context.Context, req *models.SaveRequest) (database.SaveResult, error)
	ClearLabeled(ctx context.Context) error
	ClearMomo(ctx context.Context) error
	ClearPchome(ctx context.Context) error
	InitializePchome(ctx context.Context) (int, error)
	DeleteLabeled(ctx context.Context, momoSKU string) (models.DeletedCounts, error)
}

// StatsSource reports outbox health; *database.Relay satisfies it.
type StatsSource interface {
	Stats(ctx context.Context) (database.OutboxStats, error)
}

type Handlers struct {
	labels Labeler
	stats  StatsSource
	logger *slog.Logger
}

func NewHandlers(labels Labeler, stats StatsSource, logger *slog.Logger) *Handlers {
	return &Handlers{
		labels: labels,
		stats:  stats,
		logger: logger,
	}
}

// Register mounts the endpoints the compare console posts to.
func (h *Handlers) Register(r chi.Router) {
	r.Post(backend.PathSave, h.SaveSelection)
	r.Post(backend.PathClearProducts, h.ClearProducts)
	r.Post(backend.PathClearMomo, h.ClearMomoProducts)
	r.Post(backend.PathClearPchome, h.ClearPchomeProducts)
	r.Post(backend.PathInitializePchome, h.InitializePchome)
	r.Post(backend.PathDeleteLabel, h.DeleteLabeledProduct)
	r.Get("/health", h.Health)
}

// SaveSelection stores an exported selection.
func (h *Handlers) SaveSelection(w http.ResponseWriter, r *http.Request) {
	var req models.SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.labels.SaveSelection(r.Context(), &req)
	if err != nil {
		h.fail(w, "failed to save selection", err)
		return
	}

	inserted := result.Labeled
	h.respondJSON(w, http.StatusOK, models.Response{Success: true, Inserted: &inserted})
}

func (h *Handlers) ClearProducts(w http.ResponseWriter, r *http.Request) {
	h.runClear(w, r, "labeled_products", h.labels.ClearLabeled)
}

func (h *Handlers) ClearMomoProducts(w http.ResponseWriter, r *http.Request) {
	h.runClear(w, r, "momo_products", h.labels.ClearMomo)
}

func (h *Handlers) ClearPchomeProducts(w http.ResponseWriter, r *http.Request) {
	h.runClear(w, r, "pchome_products", h.labels.ClearPchome)
}

// InitializePchome seeds pchome_products from the catalog file.
func (h *Handlers) InitializePchome(w http.ResponseWriter, r *http.Request) {
	inserted, err := h.labels.InitializePchome(r.Context())
	if err != nil {
		h.fail(w, "failed to initialize pchome_products", err)
		return
	}

	h.respondJSON(w, http.StatusOK, models.Response{Success: true, Inserted: &inserted})
}

// DeleteLabeledProduct removes a momo product and its labeled pchome rows.
func (h *Handlers) DeleteLabeledProduct(w http.ResponseWriter, r *http.Request) {
	var req models.DeleteLabelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	counts, err := h.labels.DeleteLabeled(r.Context(), req.MomoSKU)
	if err != nil {
		h.fail(w, "failed to delete labeled product", err)
		return
	}

	h.respondJSON(w, http.StatusOK, models.Response{Success: true, Deleted: &counts})
}

type HealthResponse struct {
	Status            string `json:"status"`
	OutboxPending     int64  `json:"outbox_pending"`
	OutboxDeadLetters int64  `json:"outbox_dead_letters"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Stats(r.Context())
	if err != nil {
		h.logger.Error("failed to get outbox stats", "error", err)
		h.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded"})
		return
	}

	h.respondJSON(w, http.StatusOK, HealthResponse{
		Status:            "ok",
		OutboxPending:     stats.Pending,
		OutboxDeadLetters: stats.DeadLetter,
	})
}

func (h *Handlers) runClear(w http.ResponseWriter, r *http.Request, table string, clear func(context.Context) error) {
	if err := clear(r.Context()); err != nil {
		h.fail(w, "failed to clear "+table, err)
		return
	}
	h.respondJSON(w, http.StatusOK, models.Response{Success: true})
}

// fail maps validation errors to 400 and everything else to 500.
func (h *Handlers) fail(w http.ResponseWriter, msg string, err error) {
	if errors.Is(err, labeling.ErrInvalidRequest) {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Error(msg, "error", err)
	h.respondError(w, http.StatusInternalServerError, err.Error())
}

// Helper methods
func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, models.Response{Success: false, Error: message})
}
