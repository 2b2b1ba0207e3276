package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cbthost/voter-registry/internal/auth"
	"github.com/cbthost/voter-registry/internal/metrics"
	"github.com/cbthost/voter-registry/internal/services"
	"github.com/cbthost/voter-registry/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const unauthenticatedMessage = "Not authorized, token missing or invalid"

type contextKey string

const contextIdentityKey contextKey = "admin"

// TokenValidator resolves a bearer token to the administrator it was issued to.
type TokenValidator interface {
	Validate(token string) (auth.Identity, error)
}

// AuthHandler provides the login endpoint.
type AuthHandler struct {
	adminService *services.AdminService
	logger       *slog.Logger
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(adminService *services.AdminService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		adminService: adminService,
		logger:       logger,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, adminService *services.AdminService, logger *slog.Logger) {
	handler := NewAuthHandler(adminService, logger)

	r.Post("/login", handler.Login)
}

// RequireAuth admits requests carrying a valid bearer token and stores the
// resolved identity in the request context. Every rejection gets the same
// 401 response.
func RequireAuth(tokens TokenValidator, logger *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r)
			if err == nil {
				var identity auth.Identity
				identity, err = tokens.Validate(tokenString)
				if err == nil {
					ctx := context.WithValue(r.Context(), contextIdentityKey, identity)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			m.AuthRejected()
			logger.WarnContext(r.Context(), "unauthorized request",
				"path", r.URL.Path,
				"request_id", middleware.GetReqID(r.Context()),
				"reason", err,
			)
			writeError(w, http.StatusUnauthorized, unauthenticatedMessage)
		})
	}
}

// IdentityFromContext returns the administrator admitted by RequireAuth.
func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(contextIdentityKey).(auth.Identity)
	return identity, ok
}

// Login verifies credentials and returns a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	result, err := h.adminService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "Invalid credentials")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Success: true,
		Message: "Login successful",
		Token:   result.Token,
		Admin:   result.Admin.Summary(),
	})
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Token   string             `json:"token"`
	Admin   types.AdminSummary `json:"admin"`
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
