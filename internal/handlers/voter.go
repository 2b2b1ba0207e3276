package handlers

import (
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/cbthost/voter-registry/internal/services"
	"github.com/go-chi/chi/v5"
)

// VoterHandler provides HTTP handlers for voters.
type VoterHandler struct {
	voterService *services.VoterService
	roster       *services.RosterService
	logger       *slog.Logger
}

// NewVoterHandler constructs a VoterHandler. roster may be nil when exports
// are not configured.
func NewVoterHandler(voterService *services.VoterService, roster *services.RosterService, logger *slog.Logger) *VoterHandler {
	return &VoterHandler{
		voterService: voterService,
		roster:       roster,
		logger:       logger,
	}
}

// VoterRouter registers voter routes. Registration is public; everything else
// requires authentication.
func VoterRouter(
	r chi.Router,
	voterService *services.VoterService,
	roster *services.RosterService,
	logger *slog.Logger,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewVoterHandler(voterService, roster, logger)

	r.Post("/register", handler.RegisterVoter)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", handler.ListVoters)
		if roster != nil {
			r.Post("/export", handler.ExportRoster)
			r.Get("/exports/{name}", handler.DownloadRoster)
		}
		r.Get("/{voterID}", handler.GetVoter)
		r.Put("/{voterID}/verify", handler.VerifyVoter)
	})
}

func (h *VoterHandler) RegisterVoter(w http.ResponseWriter, r *http.Request) {
	var req RegisterVoterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	voter, err := h.voterService.Register(r.Context(), services.Registration{
		Name:        req.Name,
		Gender:      req.Gender,
		DateOfBirth: req.DateOfBirth,
		NIN:         req.NIN,
		Address:     req.Address,
		Phone:       req.Phone,
		Email:       req.Email,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err, "Voter not found")
		return
	}
	writeData(w, http.StatusCreated, "Voter registered successfully", voter)
}

func (h *VoterHandler) ListVoters(w http.ResponseWriter, r *http.Request) {
	voters, err := h.voterService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "Voter not found")
		return
	}
	writeData(w, http.StatusOK, "", voters)
}

func (h *VoterHandler) GetVoter(w http.ResponseWriter, r *http.Request) {
	voter, err := h.voterService.GetByID(r.Context(), chi.URLParam(r, "voterID"))
	if err != nil {
		writeServiceError(w, r, h.logger, err, "Voter not found")
		return
	}
	writeData(w, http.StatusOK, "", voter)
}

func (h *VoterHandler) VerifyVoter(w http.ResponseWriter, r *http.Request) {
	var req VerifyVoterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.Verified == nil {
		writeError(w, http.StatusBadRequest, "verified must be true or false")
		return
	}

	voter, err := h.voterService.Verify(r.Context(), chi.URLParam(r, "voterID"), *req.Verified)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "Voter not found")
		return
	}

	message := "Voter unverified successfully"
	if voter.IsVerified {
		message = "Voter verified successfully"
	}
	writeData(w, http.StatusOK, message, voter)
}

func (h *VoterHandler) ExportRoster(w http.ResponseWriter, r *http.Request) {
	export, err := h.roster.Export(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err, "Roster not found")
		return
	}
	writeData(w, http.StatusCreated, "Roster exported successfully", export)
}

func (h *VoterHandler) DownloadRoster(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	rc, err := h.roster.Open(r.Context(), name)
	if err != nil {
		writeServiceError(w, r, h.logger, err, "Roster not found")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.WarnContext(r.Context(), "roster download interrupted", "name", name, "error", err)
	}
}

type RegisterVoterRequest struct {
	Name        string `json:"name"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"dateOfBirth"`
	NIN         string `json:"nin"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

type VerifyVoterRequest struct {
	Verified *bool `json:"verified"`
}
