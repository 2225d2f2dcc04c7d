package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"rsih_portal/internal/app/service"
	"rsih_portal/internal/common"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService  *service.AuthService
	maxUpload    int64
	loginLimiter func(http.Handler) http.Handler
}

func NewAuthHandler(as *service.AuthService, maxUpload int64, loginLimiter func(http.Handler) http.Handler) *AuthHandler {
	return &AuthHandler{authService: as, maxUpload: maxUpload, loginLimiter: loginLimiter}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.With(h.loginLimiter).Post("/login", h.login) // POST /api/auth/login
	r.Post("/register-spoc", h.registerSpoc)       // POST /api/auth/register-spoc
	r.Post("/register", h.registerSpoc)
}

func (h *AuthHandler) registerSpoc(w http.ResponseWriter, r *http.Request) {
	if !isMultipart(r) {
		common.RespondWithError(w, http.StatusBadRequest, "Registration must be submitted as multipart/form-data")
		return
	}
	if !parseMultipart(w, r, h.maxUpload) {
		return
	}
	defer r.MultipartForm.RemoveAll()

	age, _ := strconv.Atoi(strings.TrimSpace(r.FormValue("age")))
	req := service.RegisterSpocRequest{
		Name:        r.FormValue("name"),
		Age:         age,
		Email:       r.FormValue("email"),
		Phone:       r.FormValue("phone"),
		Institution: firstNonEmpty(r.FormValue("institution"), r.FormValue("institution_name")),
		Password:    r.FormValue("password"),
	}

	file, header, err := formFile(r, "file", "pdf", "identification_doc")
	switch {
	case err == nil:
		path, stageErr := stageUpload(file)
		file.Close()
		if stageErr != nil {
			log.Printf("ERROR: failed to stage nomination document: %v", stageErr)
			common.RespondWithError(w, http.StatusInternalServerError, "Registration failed.")
			return
		}
		req.DocumentPath = path
		req.DocumentName = header.Filename
	case !errors.Is(err, http.ErrMissingFile):
		common.RespondWithError(w, http.StatusBadRequest, "Invalid file upload")
		return
	}

	if err := h.authService.RegisterSpoc(r.Context(), req); err != nil {
		common.RespondWithServiceError(w, err, "Registration failed.")
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, common.MessageResponse{
		Message: "SPOC registered successfully. Awaiting admin verification.",
	})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, err, "Login failed")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}
