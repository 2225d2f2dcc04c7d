package api

import (
	"net/http"
	"strings"
	"time"

	"rsih_portal/internal/api/handler"
	"rsih_portal/internal/api/middleware"
	"rsih_portal/internal/app/service"
	"rsih_portal/internal/common/security"
	"rsih_portal/internal/domain/model"
	"rsih_portal/internal/platform/cache"
	"rsih_portal/internal/platform/storage"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

type Options struct {
	MaxUploadBytes int64
	// UploadDir is served under /uploads when set (disk storage mode).
	UploadDir    string
	LoginLimiter cache.AttemptLimiter
}

func NewRouter(
	authService *service.AuthService,
	adminService *service.AdminService,
	teamService *service.TeamService,
	submissionService *service.SubmissionService,
	problemService *service.ProblemService,
	settingsService *service.SettingsService,
	opts Options,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Searches for a token in "Authorization: Bearer T" and puts the result in context.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	if opts.UploadDir != "" {
		r.Handle(storage.PublicPrefix+"/*", http.StripPrefix(storage.PublicPrefix, noDirListing(http.FileServer(http.Dir(opts.UploadDir)))))
	}

	limiter := opts.LoginLimiter
	if limiter == nil {
		limiter = cache.NopAttemptLimiter{}
	}

	authHandler := handler.NewAuthHandler(authService, opts.MaxUploadBytes, middleware.Throttle(limiter))
	adminHandler := handler.NewAdminHandler(adminService)
	problemHandler := handler.NewProblemHandler(problemService)
	spocHandler := handler.NewSpocHandler(teamService)
	submissionHandler := handler.NewSubmissionHandler(submissionService, problemService, opts.MaxUploadBytes)
	settingsHandler := handler.NewSettingsHandler(settingsService)

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", authHandler.RegisterRoutes)
		api.Route("/public", problemHandler.RegisterPublicRoutes)
		api.Route("/settings", settingsHandler.RegisterRoutes)

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(middleware.Authenticator)
			admin.Use(middleware.RequireRole(model.RoleAdmin))
			adminHandler.RegisterRoutes(admin)
			admin.Route("/ps", problemHandler.RegisterAdminRoutes)
		})

		api.Route("/spoc", func(spoc chi.Router) {
			spoc.Use(middleware.Authenticator)
			spoc.Use(middleware.RequireRole(model.RoleSpoc))
			spocHandler.RegisterRoutes(spoc)
		})

		api.Route("/team", func(team chi.Router) {
			team.Use(middleware.Authenticator)
			team.Use(middleware.RequireRole(model.RoleTeamLeader))
			submissionHandler.RegisterRoutes(team)
		})
	})

	return r
}

func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
