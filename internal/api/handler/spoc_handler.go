package handler

import (
	"encoding/json"
	"net/http"

	"rsih_portal/internal/api/middleware"
	"rsih_portal/internal/app/service"
	"rsih_portal/internal/common"

	"github.com/go-chi/chi/v5"
)

type SpocHandler struct {
	teamService *service.TeamService
}

func NewSpocHandler(ts *service.TeamService) *SpocHandler {
	return &SpocHandler{teamService: ts}
}

func (h *SpocHandler) RegisterRoutes(r chi.Router) {
	r.Post("/team", h.registerTeam)
	r.Get("/college", h.myCollege)
	r.Get("/teams", h.myTeams)
	r.Get("/teams/{collegeId}", h.teamsByCollege)
	r.Get("/team/{teamId}/submission", h.teamSubmission)
}

func (h *SpocHandler) registerTeam(w http.ResponseWriter, r *http.Request) {
	spocID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.RegisterTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.teamService.RegisterTeam(r.Context(), spocID, req)
	if err != nil {
		common.RespondWithServiceError(w, err, "Failed to register team.")
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, result)
}

func (h *SpocHandler) myCollege(w http.ResponseWriter, r *http.Request) {
	spocID, _ := middleware.GetUserIDFromContext(r.Context())
	college, err := h.teamService.MyCollege(r.Context(), spocID)
	if err != nil {
		common.RespondWithServiceError(w, err, "Failed to fetch college")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, college)
}

func (h *SpocHandler) myTeams(w http.ResponseWriter, r *http.Request) {
	spocID, _ := middleware.GetUserIDFromContext(r.Context())
	teams, err := h.teamService.MyTeams(r.Context(), spocID)
	if err != nil {
		common.RespondWithServiceError(w, err, "Failed to fetch teams")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, teams)
}

func (h *SpocHandler) teamsByCollege(w http.ResponseWriter, r *http.Request) {
	spocID, _ := middleware.GetUserIDFromContext(r.Context())
	collegeID, ok := idParam(r, "collegeId")
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid college id")
		return
	}
	teams, err := h.teamService.TeamsByCollege(r.Context(), spocID, collegeID)
	if err != nil {
		common.RespondWithServiceError(w, err, "Failed to fetch teams")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, teams)
}

func (h *SpocHandler) teamSubmission(w http.ResponseWriter, r *http.Request) {
	spocID, _ := middleware.GetUserIDFromContext(r.Context())
	teamID, ok := idParam(r, "teamId")
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid team id")
		return
	}
	status, err := h.teamService.TeamSubmission(r.Context(), spocID, teamID)
	if err != nil {
		common.RespondWithServiceError(w, err, "Failed to fetch submission")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, status)
}
