package handler

import (
	"encoding/json"
	"net/http"

	"rsih_portal/internal/app/service"
	"rsih_portal/internal/common"

	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	adminService *service.AdminService
}

func NewAdminHandler(as *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: as}
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/spocs", h.listSpocs)
	r.Put("/spocs/{id}", h.updateSpoc)
	r.Delete("/spocs/{id}", h.deleteSpoc)
	r.Put("/spoc/{id}/verify", h.approveRegistration)

	r.Get("/registrations", h.listRegistrations)
	r.Put("/registrations/{id}/approve", h.approveRegistration)
	r.Delete("/registrations/{id}", h.rejectRegistration)

	r.Get("/submissions", h.listSubmissions)
}

func (h *AdminHandler) listSpocs(w http.ResponseWriter, r *http.Request) {
	spocs, err := h.adminService.ListSpocs(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, err, "Failed to fetch SPOCs")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, spocs)
}

func (h *AdminHandler) listRegistrations(w http.ResponseWriter, r *http.Request) {
	pending, err := h.adminService.ListPendingRegistrations(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, err, "Failed to fetch registrations")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, pending)
}

func (h *AdminHandler) approveRegistration(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid SPOC id")
		return
	}
	user, err := h.adminService.ApproveRegistration(r.Context(), id)
	if err != nil {
		common.RespondWithServiceError(w, err, "Failed to approve registration")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) rejectRegistration(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid SPOC id")
		return
	}
	if err := h.adminService.RejectRegistration(r.Context(), id); err != nil {
		common.RespondWithServiceError(w, err, "Failed to reject registration")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: "Registration rejected and deleted successfully."})
}

func (h *AdminHandler) updateSpoc(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid SPOC id")
		return
	}
	var req service.UpdateSpocRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := h.adminService.UpdateSpoc(r.Context(), id, req)
	if err != nil {
		common.RespondWithServiceError(w, err, "Failed to update SPOC")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) deleteSpoc(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r, "id")
	if !ok {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid SPOC id")
		return
	}
	if err := h.adminService.DeleteSpoc(r.Context(), id); err != nil {
		common.RespondWithServiceError(w, err, "Failed to delete SPOC")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: "SPOC deleted successfully"})
}

func (h *AdminHandler) listSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.adminService.ListSubmissions(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, err, "Failed to fetch submissions")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, subs)
}
