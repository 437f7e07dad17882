// Package api provides the HTTP handlers for the lakeflow REST API.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"lakeflow/internal/domain"
)

// Ingester handles object-created notifications from the landing bucket.
type Ingester interface {
	Handle(ctx context.Context, evt domain.ObjectCreatedEvent) (*domain.IngestResult, error)
}

// Loader loads a bronze partition into the warehouse.
type Loader interface {
	Load(ctx context.Context, p domain.Partition) (*domain.LoadResult, error)
}

// TransformRunner executes the transformation catalog.
type TransformRunner interface {
	Run(ctx context.Context) (*domain.RunResult, error)
}

// Handler serves the pipeline API.
type Handler struct {
	ingester Ingester
	loader   Loader
	runner   TransformRunner
	logger   *slog.Logger
}

func NewHandler(ingester Ingester, loader Loader, runner TransformRunner, logger *slog.Logger) *Handler {
	return &Handler{
		ingester: ingester,
		loader:   loader,
		runner:   runner,
		logger:   logger,
	}
}

type errorResponse struct {
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := httpStatusFromDomainError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "status", status, "error", err)
	}
	h.writeJSON(w, status, errorResponse{
		Status:  domain.StatusError,
		Code:    status,
		Message: err.Error(),
	})
}

// HandleIngestEvent accepts an object-created event for the landing bucket
// and relocates the object to its bronze partition.
//
// POST /v1/ingest/events
func (h *Handler) HandleIngestEvent(w http.ResponseWriter, r *http.Request) {
	var evt domain.ObjectCreatedEvent
	if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
		h.writeError(w, domain.ErrValidation("invalid request body: %v", err))
		return
	}

	result, err := h.ingester.Handle(r.Context(), evt)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

type loadRequest struct {
	Company string `json:"company"`
	Domain  string `json:"domain"`
	Date    string `json:"date"`
}

// HandleLoad loads every unprocessed file of a bronze partition into the
// warehouse.
//
// POST /v1/load
func (h *Handler) HandleLoad(w http.ResponseWriter, r *http.Request) {
	var req loadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.ErrValidation("invalid request body: %v", err))
		return
	}

	p, err := domain.NewPartition(req.Company, req.Domain, req.Date)
	if err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.loader.Load(r.Context(), p)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleTransformRun executes the full transformation catalog in dependency
// order and reports which transformations ran.
//
// POST /v1/transform/runs
func (h *Handler) HandleTransformRun(w http.ResponseWriter, r *http.Request) {
	result, err := h.runner.Run(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// HandleHealthz reports process liveness.
//
// GET /healthz
func (h *Handler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
