package handler

import (
	"encoding/json"
	"net/http"

	"rsih_portal/internal/api/middleware"
	"rsih_portal/internal/app/service"
	"rsih_portal/internal/common"

	"github.com/go-chi/chi/v5"
)

type SettingsHandler struct {
	settingsService *service.SettingsService
}

func NewSettingsHandler(ss *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: ss}
}

type settingUpdatedResponse struct {
	Message string `json:"message"`
	Key     string `json:"key"`
	Value   string `json:"value"`
}

func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.getSettings) // public

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.Authenticator)
		adminRouter.Use(middleware.AdminOnly)
		adminRouter.Put("/", h.updateSetting)
	})
}

func (h *SettingsHandler) getSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsService.All(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, err, "Failed to fetch settings")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) updateSetting(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	setting, err := h.settingsService.Update(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, err, "Failed to update setting")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, settingUpdatedResponse{
		Message: "Setting updated",
		Key:     setting.Key,
		Value:   setting.Value,
	})
}
