// Package resources exposes the catalog service over HTTP.
package resources

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"resourcecatalog/internal/core"
	"resourcecatalog/pkg/domain"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CallerHeader carries the authenticated caller identity set by the fronting
// authenticator. Requests without it act as domain.AnonymousIdentity.
const CallerHeader = "X-Caller-Identity"

// RequestIDHeader echoes the per-request id assigned by the handler.
const RequestIDHeader = "X-Request-ID"

const maxBodyBytes = 64 << 10

// Catalog is the service surface the handler dispatches to.
type Catalog interface {
	CreateResource(ctx context.Context, caller domain.Identity, payload domain.ResourcePayload) (domain.Resource, error)
	GetResource(ctx context.Context, id uint64) (domain.Resource, error)
	ListResources(ctx context.Context, page int) ([]domain.Resource, error)
	ListResourcesByCategory(ctx context.Context, category domain.Category, page int) ([]domain.Resource, error)
	UpdateResource(ctx context.Context, caller domain.Identity, id uint64, payload domain.ResourcePayload) (domain.Resource, error)
	DeleteResource(ctx context.Context, caller domain.Identity, id uint64) error
	VerifyResource(ctx context.Context, caller domain.Identity, id uint64) (domain.Resource, error)
	SearchResources(ctx context.Context, query string, page int) ([]domain.Resource, error)
}

var _ Catalog = (*core.Service)(nil)

// Handler provides HTTP access to the catalog.
type Handler struct {
	Catalog Catalog
	Logger  core.Logger
}

// NewHandler constructs a catalog HTTP handler.
func NewHandler(c Catalog, logger core.Logger) *Handler {
	return &Handler{Catalog: c, Logger: logger}
}

// Routes returns the router serving /api/v1.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(h.requestLog)
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/resources", func(r chi.Router) {
			r.Post("/", h.handleCreate)
			r.Get("/", h.handleList)
			r.Get("/search", h.handleSearch)
			r.Get("/{id}", h.handleGet)
			r.Put("/{id}", h.handleUpdate)
			r.Delete("/{id}", h.handleDelete)
			r.Post("/{id}/verify", h.handleVerify)
		})
		r.Get("/categories/{category}/resources", h.handleListByCategory)
	})
	return r
}

func (h *Handler) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set(RequestIDHeader, id)
		started := time.Now()
		next.ServeHTTP(w, r)
		if h.Logger != nil {
			h.Logger.Debug("http request", "request_id", id, "method", r.Method, "path", r.URL.Path, "duration", time.Since(started))
		}
	})
}

type payloadRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (p payloadRequest) payload() domain.ResourcePayload {
	return domain.ResourcePayload{Title: p.Title, Description: p.Description, Category: domain.Category(p.Category)}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodePayload(w, r)
	if !ok {
		return
	}
	created, err := h.Catalog.CreateResource(r.Context(), callerFrom(r), req.payload())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"resource": created})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := resourceID(w, r)
	if !ok {
		return
	}
	found, err := h.Catalog.GetResource(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"resource": found})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page, ok := pageParam(w, r)
	if !ok {
		return
	}
	items, err := h.Catalog.ListResources(r.Context(), page)
	writeList(w, page, items, err)
}

func (h *Handler) handleListByCategory(w http.ResponseWriter, r *http.Request) {
	category, err := domain.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	page, ok := pageParam(w, r)
	if !ok {
		return
	}
	items, err := h.Catalog.ListResourcesByCategory(r.Context(), category, page)
	writeList(w, page, items, err)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	page, ok := pageParam(w, r)
	if !ok {
		return
	}
	items, err := h.Catalog.SearchResources(r.Context(), r.URL.Query().Get("q"), page)
	writeList(w, page, items, err)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := resourceID(w, r)
	if !ok {
		return
	}
	req, ok := decodePayload(w, r)
	if !ok {
		return
	}
	updated, err := h.Catalog.UpdateResource(r.Context(), callerFrom(r), id, req.payload())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"resource": updated})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := resourceID(w, r)
	if !ok {
		return
	}
	if err := h.Catalog.DeleteResource(r.Context(), callerFrom(r), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	id, ok := resourceID(w, r)
	if !ok {
		return
	}
	verified, err := h.Catalog.VerifyResource(r.Context(), callerFrom(r), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"resource": verified})
}

func callerFrom(r *http.Request) domain.Identity {
	if v := r.Header.Get(CallerHeader); v != "" {
		return domain.Identity(v)
	}
	return domain.AnonymousIdentity
}

func decodePayload(w http.ResponseWriter, r *http.Request) (payloadRequest, bool) {
	var req payloadRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return payloadRequest{}, false
	}
	return req, true
}

func resourceID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid resource id")
		return 0, false
	}
	return id, true
}

func pageParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("page")
	if raw == "" {
		return 0, true
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 0 {
		writeError(w, http.StatusBadRequest, "invalid page")
		return 0, false
	}
	return page, true
}

func writeList(w http.ResponseWriter, page int, items []domain.Resource, err error) {
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"page": page, "resources": items})
}

func statusFor(err error) int {
	var de *domain.Error
	if !errors.As(err, &de) {
		return http.StatusInternalServerError
	}
	switch de.Kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusForbidden
	case domain.KindAlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	writeJSON(w, status, map[string]any{"error": message, "kind": string(domain.KindOf(err))})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
