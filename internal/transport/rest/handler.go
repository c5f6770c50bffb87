// Package rest provides HTTP handlers for inventory record operations.
package rest

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	perrors "github.com/abgdnv/inventory/internal/errors"
	"github.com/abgdnv/inventory/internal/inventory"
	"github.com/abgdnv/inventory/internal/report"
	"github.com/abgdnv/inventory/internal/service"
	"github.com/abgdnv/inventory/pkg/web"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service       service.InventoryService
	authenticator Authenticator
	logger        *slog.Logger
	now           func() time.Time
}

// NewHandler creates a new Handler with the provided service and credential check.
func NewHandler(service service.InventoryService, authenticator Authenticator, logger *slog.Logger) *Handler {
	return &Handler{
		service:       service,
		authenticator: authenticator,
		logger:        logger.With("component", "rest"),
		now:           time.Now,
	}
}

// RegisterRoutes registers the HTTP routes for the inventory service.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(BasicAuth(h.authenticator, h.logger))
		r.Route("/api/v1/inventories/{kind}", func(r chi.Router) {
			r.Get("/report", h.Report)
			r.Route("/records", func(r chi.Router) {
				r.Get("/", h.List)
				r.Post("/", h.Add)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.FindByID)
					r.Patch("/", h.Edit)
					r.Delete("/", h.Delete)
				})
			})
		})
	})
	r.Get("/healthz", h.HealthCheck)
}

// List returns the records of an inventory, optionally paged with offset and limit.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.parseKind(w, r)
	if !ok {
		return
	}
	offset, ok := web.ParseOptionalGte(r, w, h.logger, "offset", 0, 0)
	if !ok {
		return
	}
	limit, ok := web.ParseOptionalGte(r, w, h.logger, "limit", 0, 0)
	if !ok {
		return
	}

	list, err := h.service.List(r.Context(), kind, offset, limit)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to fetch records")
		return
	}
	h.logger.DebugContext(r.Context(), "Successfully retrieved record list", "kind", kind, "count", len(list))
	web.RespondJSON(w, h.logger, http.StatusOK, list)
}

// FindByID retrieves a record by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.parseKind(w, r)
	if !ok {
		return
	}
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}

	found, err := h.service.FindByID(r.Context(), kind, id)
	if err != nil {
		h.respondServiceError(w, r, err, fmt.Sprintf("Failed to retrieve record with ID %d", id))
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, found)
}

// Add creates a record. Admin only.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.parseKind(w, r)
	if !ok {
		return
	}
	role, _ := RoleFrom(r.Context())
	var dto service.RecordCreateDto
	if !web.DecodeJSON(w, r, h.logger, &dto) {
		return
	}

	created, err := h.service.Add(r.Context(), role, kind, dto)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to add record")
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/v1/inventories/%s/records/%d", kind, created.ID))
	web.RespondJSON(w, h.logger, http.StatusCreated, created)
}

// Edit changes the fields present in the body. Employees may only send quantity.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.parseKind(w, r)
	if !ok {
		return
	}
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	role, _ := RoleFrom(r.Context())
	var dto service.RecordEditDto
	if !web.DecodeJSON(w, r, h.logger, &dto) {
		return
	}

	updated, err := h.service.Edit(r.Context(), role, kind, id, dto)
	if err != nil {
		h.respondServiceError(w, r, err, fmt.Sprintf("Failed to update record with ID %d", id))
		return
	}
	web.RespondJSON(w, h.logger, http.StatusOK, updated)
}

// Delete removes a record. Admin only.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.parseKind(w, r)
	if !ok {
		return
	}
	id, ok := web.ParseID(w, r, h.logger)
	if !ok {
		return
	}
	role, _ := RoleFrom(r.Context())

	if err := h.service.Delete(r.Context(), role, kind, id); err != nil {
		h.respondServiceError(w, r, err, fmt.Sprintf("Failed to delete record with ID %d", id))
		return
	}
	web.RespondJSON(w, h.logger, http.StatusNoContent, nil)
}

// Report returns the value report as JSON, or as the fixed-width text report
// when format=text is requested.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.parseKind(w, r)
	if !ok {
		return
	}

	rep, err := h.service.Report(r.Context(), kind, h.now())
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to build report")
		return
	}
	if !strings.EqualFold(r.URL.Query().Get("format"), "text") {
		web.RespondJSON(w, h.logger, http.StatusOK, rep)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteReport(&buf, *rep); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to render report", "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, "Failed to build report")
		return
	}
	web.RespondText(w, http.StatusOK, buf.Bytes())
}

// HealthCheck handles the health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	web.RespondJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) parseKind(w http.ResponseWriter, r *http.Request) (inventory.Kind, bool) {
	value := chi.URLParam(r, "kind")
	kind, err := inventory.ParseKind(value)
	if err != nil {
		web.RespondError(w, h.logger, http.StatusNotFound, fmt.Sprintf("Unknown inventory: %s", value))
		return "", false
	}
	return kind, true
}

// respondServiceError maps service errors to HTTP statuses.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	ctx := r.Context()
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.logger.WarnContext(ctx, "Validation errors occurred", "errors", validationErr.Fields)
		web.RespondJSON(w, h.logger, http.StatusBadRequest, map[string]any{"validation_errors": validationErr.Fields})
	case errors.Is(err, perrors.ErrValidation):
		web.RespondError(w, h.logger, http.StatusBadRequest, "Invalid request body")
	case errors.Is(err, perrors.ErrRecordNotFound):
		h.logger.WarnContext(ctx, "Record not found", "error", err)
		web.RespondError(w, h.logger, http.StatusNotFound, "Record not found")
	case errors.Is(err, perrors.ErrUnknownKind):
		web.RespondError(w, h.logger, http.StatusNotFound, "Unknown inventory")
	case errors.Is(err, perrors.ErrPermissionDenied):
		h.logger.WarnContext(ctx, "Permission denied", "error", err)
		web.RespondError(w, h.logger, http.StatusForbidden, "Permission denied")
	default:
		h.logger.ErrorContext(ctx, fallback, "error", err)
		web.RespondError(w, h.logger, http.StatusInternalServerError, fallback)
	}
}
