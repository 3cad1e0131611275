package employees

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/nimbus-hr/nimbus-hr/internal/platform/httpx"
	"github.com/nimbus-hr/nimbus-hr/internal/rbac"
	"github.com/nimbus-hr/nimbus-hr/internal/shared"
)

// Handler wires HTTP endpoints for employee management.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     rbac.Guard
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard rbac.Guard) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		guard:     guard,
		validator: validator.New(),
	}
}

// MountRoutes registers employee routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(rbac.RequirePermissions(rbac.PermCreateEmployee)))
		r.Post("/", h.handleCreate)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(rbac.RequirePermissions(rbac.PermReadEmployee)))
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(rbac.RequirePermissions(rbac.PermUpdateEmployee)))
		r.Patch("/{id}", h.handleUpdate)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(rbac.RequirePermissions(rbac.PermDeleteEmployee)))
		r.Delete("/{id}", h.handleDelete)
	})
}

// tenant returns the caller's resolved tenant id, or "" when the gate did
// not run.
func tenant(r *http.Request) string {
	return shared.RequestContextFrom(r.Context()).TenantID()
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	tenantID := tenant(r)
	if tenantID == "" {
		httpx.Error(w, r, http.StatusUnauthorized, "User not associated with any organization")
		return
	}

	var req CreateEmployeeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, r, http.StatusBadRequest, "Validation failed")
		return
	}

	emp, err := h.service.Create(r.Context(), tenantID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrTenantMismatch):
			httpx.Error(w, r, http.StatusForbidden, "Cannot create employee in another organization")
		case errors.Is(err, httpx.ErrDuplicate):
			httpx.Error(w, r, http.StatusConflict, "Official email already in use")
		default:
			httpx.RespondError(w, r, err)
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, emp)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	tenantID := tenant(r)
	if tenantID == "" {
		httpx.Error(w, r, http.StatusUnauthorized, "User not associated with any organization")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	result, err := h.service.List(r.Context(), ListFilters{
		TenantID: tenantID,
		Search:   r.URL.Query().Get("search"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	tenantID := tenant(r)
	if tenantID == "" {
		httpx.Error(w, r, http.StatusUnauthorized, "User not associated with any organization")
		return
	}

	emp, err := h.service.Get(r.Context(), tenantID, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, emp)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	tenantID := tenant(r)
	if tenantID == "" {
		httpx.Error(w, r, http.StatusUnauthorized, "User not associated with any organization")
		return
	}

	var req UpdateEmployeeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, r, http.StatusBadRequest, "Validation failed")
		return
	}

	emp, err := h.service.Update(r.Context(), tenantID, chi.URLParam(r, "id"), req)
	if err != nil {
		if errors.Is(err, httpx.ErrDuplicate) {
			httpx.Error(w, r, http.StatusConflict, "Official email already in use")
			return
		}
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, emp)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	tenantID := tenant(r)
	if tenantID == "" {
		httpx.Error(w, r, http.StatusUnauthorized, "User not associated with any organization")
		return
	}

	if err := h.service.Delete(r.Context(), tenantID, chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Employee deleted"})
}
