package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cbthost/voter-registry/internal/services"
	"github.com/cbthost/voter-registry/types"
	"github.com/go-chi/chi/v5"
)

// AdminHandler provides HTTP handlers for administrator management.
type AdminHandler struct {
	adminService *services.AdminService
	logger       *slog.Logger
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(adminService *services.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		logger:       logger,
	}
}

// AdminRouter registers administrator routes. Every route requires authentication.
func AdminRouter(
	r chi.Router,
	adminService *services.AdminService,
	logger *slog.Logger,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewAdminHandler(adminService, logger)

	r.Use(authMiddleware)
	r.Get("/", handler.ListAdmins)
	r.Get("/profile", handler.GetProfile)
	r.Put("/profile", handler.UpdateProfile)
	r.Post("/create", handler.CreateAdmin)
	r.Put("/change-password", handler.ChangePassword)
	r.Delete("/{adminID}", handler.DeleteAdmin)
}

func (h *AdminHandler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.adminService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "Admin not found")
		return
	}
	writeData(w, http.StatusOK, "", admins)
}

func (h *AdminHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, unauthenticatedMessage)
		return
	}

	admin, err := h.adminService.GetByID(r.Context(), identity.AdminID)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "Admin not found")
		return
	}
	writeData(w, http.StatusOK, "", admin)
}

func (h *AdminHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, unauthenticatedMessage)
		return
	}

	var req UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	admin, err := h.adminService.UpdateProfile(r.Context(), identity.AdminID, services.ProfileUpdate{
		Username: req.Username,
		Email:    req.Email,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err, "Admin not found")
		return
	}
	writeData(w, http.StatusOK, "Profile updated successfully", admin)
}

func (h *AdminHandler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var req CreateAdminRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	admin, err := h.adminService.Create(r.Context(), services.NewAdmin{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     types.Role(req.Role),
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err, "Admin not found")
		return
	}
	writeData(w, http.StatusCreated, "Admin created successfully", admin)
}

func (h *AdminHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, unauthenticatedMessage)
		return
	}

	var req ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	err := h.adminService.ChangePassword(r.Context(), identity.AdminID, req.CurrentPassword, req.NewPassword)
	if errors.Is(err, services.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}
	if err != nil {
		writeServiceError(w, r, h.logger, err, "Admin not found")
		return
	}
	writeData(w, http.StatusOK, "Password changed successfully", nil)
}

func (h *AdminHandler) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, unauthenticatedMessage)
		return
	}

	if err := h.adminService.Delete(r.Context(), identity.AdminID, chi.URLParam(r, "adminID")); err != nil {
		writeServiceError(w, r, h.logger, err, "Admin not found")
		return
	}
	writeData(w, http.StatusOK, "Admin deleted successfully", nil)
}

type CreateAdminRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UpdateProfileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
