package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/nimbus-hr/nimbus-hr/internal/platform/httpx"
	"github.com/nimbus-hr/nimbus-hr/internal/rbac"
	"github.com/nimbus-hr/nimbus-hr/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
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

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(rbac.Public()))
		r.Post("/signup", h.handleSignUp)
		r.Post("/signin", h.handleSignIn)
		r.Post("/reset-password", h.handleResetPassword)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(rbac.Authenticated()))
		r.Get("/refresh", h.handleRefresh)
		r.Post("/signout", h.handleSignOut)
		r.Post("/update-password", h.handleUpdatePassword)
		r.Get("/me", h.handleMe)
	})
}

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	result, err := h.service.SignUp(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidOrganization) {
			httpx.Error(w, r, http.StatusBadRequest, "Invalid organization")
			return
		}
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	result, err := h.service.SignIn(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	identity := shared.RequestContextFrom(r.Context()).Identity()
	if identity == nil || identity.Token == "" {
		httpx.Error(w, r, http.StatusUnauthorized, "No token provided")
		return
	}
	result, err := h.service.SignOut(r.Context(), identity.Token)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	result, err := h.service.ResetPassword(r.Context(), req.Email)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	identity := shared.RequestContextFrom(r.Context()).Identity()
	if identity == nil || identity.Token == "" {
		httpx.Error(w, r, http.StatusUnauthorized, "No token provided")
		return
	}

	var req UpdatePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, r, http.StatusBadRequest, validationMessage(err))
		return
	}

	result, err := h.service.UpdatePassword(r.Context(), identity.Token, req.NewPassword)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := r.Header.Get("X-Refresh-Token")
	if refreshToken == "" {
		httpx.Error(w, r, http.StatusBadRequest, "No refresh token provided")
		return
	}
	result, err := h.service.RefreshSession(r.Context(), refreshToken)
	if err != nil {
		httpx.RespondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

// handleMe echoes the identity the gate resolved for this request.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	identity := shared.RequestContextFrom(r.Context()).Identity()
	if identity == nil {
		httpx.Error(w, r, http.StatusUnauthorized, "No token provided")
		return
	}
	httpx.JSON(w, http.StatusOK, SignInUser{
		ID:          identity.ID,
		Email:       identity.Email,
		TenantID:    identity.TenantID,
		Roles:       identity.Roles,
		Permissions: identity.Permissions,
	})
}

func validationMessage(err error) string {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrs) == 0 {
		return "Validation failed"
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field())
	}
	return "Validation failed: " + strings.Join(fields, ", ")
}
