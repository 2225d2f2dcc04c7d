package handler

import (
	"encoding/json"
	"net/http"

	"rsih_portal/internal/app/service"
	"rsih_portal/internal/common"

	"github.com/go-chi/chi/v5"
)

type ProblemHandler struct {
	problemService *service.ProblemService
}

func NewProblemHandler(ps *service.ProblemService) *ProblemHandler {
	return &ProblemHandler{problemService: ps}
}

// RegisterAdminRoutes mounts problem statement management under /api/admin/ps.
func (h *ProblemHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/", h.createProblem)
	r.Get("/", h.listProblems)
	r.Put("/{id}", h.updateProblem)
	r.Delete("/{id}", h.deleteProblem)
}

// RegisterPublicRoutes mounts the read-only catalog under /api/public.
func (h *ProblemHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/ps", h.publicCatalog)
}

func (h *ProblemHandler) createProblem(w http.ResponseWriter, r *http.Request) {
	var req service.ProblemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	ps, err := h.problemService.Create(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, err, "Failed to create problem statement")
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, ps)
}

func (h *ProblemHandler) listProblems(w http.ResponseWriter, r *http.Request) {
	list, err := h.problemService.List(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, err, "Failed to fetch problem statements")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, list)
}

func (h *ProblemHandler) updateProblem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid problem statement id")
		return
	}
	var req service.ProblemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	ps, err := h.problemService.Update(r.Context(), id, req)
	if err != nil {
		common.RespondWithServiceError(w, err, "Failed to update problem statement")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, ps)
}

func (h *ProblemHandler) deleteProblem(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid problem statement id")
		return
	}
	if err := h.problemService.Delete(r.Context(), id); err != nil {
		common.RespondWithServiceError(w, err, "Failed to delete problem statement")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: "Problem statement deleted successfully."})
}

func (h *ProblemHandler) publicCatalog(w http.ResponseWriter, r *http.Request) {
	list, err := h.problemService.PublicCatalog(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, err, "Failed to fetch problem statements")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, list)
}
