package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rsih_portal/internal/api"
	"rsih_portal/internal/app/service"
	"rsih_portal/internal/app/worker"
	"rsih_portal/internal/common/security"
	"rsih_portal/internal/domain/repository"
	"rsih_portal/internal/platform/cache"
	"rsih_portal/internal/platform/config"
	"rsih_portal/internal/platform/database"
	"rsih_portal/internal/platform/mail"
	"rsih_portal/internal/platform/queue"
	"rsih_portal/internal/platform/storage"
)

func main() {
	// 1. Load Configuration
	config.Load()
	cfg := config.AppConfig
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT(cfg.JWTKey, cfg.JWTExp)
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	// 4. Initialize Redis (optional)
	queue.ConnectRedis()
	defer queue.CloseRedis()

	// 5. Initialize Storage
	store, err := storage.New(cfg)
	if err != nil {
		log.Fatalf("Could not initialize storage: %v", err)
	}
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	store.EnsureBucket(startupCtx, cfg.DocumentsBucket)
	store.EnsureBucket(startupCtx, cfg.PresentationsBucket)

	// 6. Redis-backed helpers, or no-ops when Redis is off
	var (
		catalog      cache.CatalogCache   = cache.NopCatalogCache{}
		loginLimiter cache.AttemptLimiter = cache.NopAttemptLimiter{}
		mailQueue    queue.MailQueue      = queue.NopMailQueue{}
	)
	if queue.RDB != nil {
		catalog = cache.NewRedisCatalogCache(queue.RDB, cfg.CatalogCacheTTL)
		loginLimiter = cache.NewRedisAttemptLimiter(queue.RDB, "login", cfg.LoginMaxAttempts, cfg.LoginWindow)
		mailQueue = queue.NewRedisMailQueue(queue.RDB, cfg.MailQueueName, cfg.MailQueueTTL)
	}
	mailer := mail.NewSMTPMailer(cfg)

	// 7. Initialize Repositories
	tx := database.NewTransactor(database.DB)
	userRepo := repository.NewPgUserRepository(database.DB)
	collegeRepo := repository.NewPgCollegeRepository(database.DB)
	teamRepo := repository.NewPgTeamRepository(database.DB)
	problemRepo := repository.NewPgProblemRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)
	settingRepo := repository.NewPgSettingRepository(database.DB)

	// 8. Initialize Services
	authService := service.NewAuthService(userRepo, collegeRepo, store, tx, cfg.DocumentsBucket)
	adminService := service.NewAdminService(userRepo, submissionRepo, store, catalog, cfg.DocumentsBucket)
	teamService := service.NewTeamService(tx, userRepo, collegeRepo, teamRepo, submissionRepo, mailer, mailQueue, cfg.TeamLimitPerCollege)
	submissionService := service.NewSubmissionService(teamRepo, problemRepo, submissionRepo, store, catalog, cfg.PresentationsBucket)
	problemService := service.NewProblemService(problemRepo, settingRepo, catalog)
	settingsService := service.NewSettingsService(settingRepo, catalog)

	if err := authService.EnsureAdmin(startupCtx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("Could not seed admin account: %v", err)
	}
	startupCancel()

	// 9. Initialize Mail Worker (as a goroutine)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if queue.RDB != nil && cfg.MailWorkerInProcess {
		mailWorker := worker.NewMailWorker(mailQueue, mailer, cfg.MailMaxAttempts)
		go mailWorker.Start(workerCtx)
		fmt.Println("Mail worker started.")
	}

	// 10. Initialize Router & HTTP Server
	opts := api.Options{
		MaxUploadBytes: cfg.UploadMaxBytes,
		LoginLimiter:   loginLimiter,
	}
	if disk, ok := store.(*storage.DiskStore); ok {
		opts.UploadDir = disk.Root()
	}
	router := api.NewRouter(authService, adminService, teamService, submissionService, problemService, settingsService, opts)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 11. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")
	workerCancel() // Signal worker to stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server and worker stopped gracefully.")
}
