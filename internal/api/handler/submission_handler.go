package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"rsih_portal/internal/api/middleware"
	"rsih_portal/internal/app/service"
	"rsih_portal/internal/common"

	"github.com/go-chi/chi/v5"
)

// SubmissionHandler serves the team leader routes under /api/team.
type SubmissionHandler struct {
	submissionService *service.SubmissionService
	problemService    *service.ProblemService
	maxUpload         int64
}

func NewSubmissionHandler(ss *service.SubmissionService, ps *service.ProblemService, maxUpload int64) *SubmissionHandler {
	return &SubmissionHandler{submissionService: ss, problemService: ps, maxUpload: maxUpload}
}

func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/team", h.myTeam)
	r.Get("/ps", h.listProblems)
	r.Post("/submit", h.submitIdea)
	r.Get("/submissions", h.mySubmission)
}

func (h *SubmissionHandler) submitIdea(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.SubmitIdeaRequest
	var upload *service.FileUpload

	if isMultipart(r) {
		if !parseMultipart(w, r, h.maxUpload) {
			return
		}
		defer r.MultipartForm.RemoveAll()

		psID, _ := strconv.ParseInt(strings.TrimSpace(r.FormValue("ps_id")), 10, 64)
		req = service.SubmitIdeaRequest{
			PsID:        psID,
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
			Abstract:    r.FormValue("abstract"),
			YtLink:      r.FormValue("yt_link"),
		}

		file, header, err := formFile(r, "ppt_file")
		switch {
		case err == nil:
			defer file.Close()
			upload = &service.FileUpload{Name: header.Filename, Body: file}
		case !errors.Is(err, http.ErrMissingFile):
			common.RespondWithError(w, http.StatusBadRequest, "Invalid file upload")
			return
		}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sub, err := h.submissionService.Submit(r.Context(), userID, req, upload)
	if err != nil {
		common.RespondWithServiceError(w, err, "Failed to submit idea")
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, sub)
}

func (h *SubmissionHandler) myTeam(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	team, err := h.submissionService.MyTeam(r.Context(), userID)
	if err != nil {
		common.RespondWithServiceError(w, err, "Failed to fetch team")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, team)
}

func (h *SubmissionHandler) listProblems(w http.ResponseWriter, r *http.Request) {
	list, err := h.problemService.List(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, err, "Failed to fetch problem statements")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, list)
}

// mySubmission responds with null when the team has not submitted.
func (h *SubmissionHandler) mySubmission(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	sub, err := h.submissionService.MySubmission(r.Context(), userID)
	if err != nil {
		common.RespondWithServiceError(w, err, "Failed to fetch submission")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, sub)
}
