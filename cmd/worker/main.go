// Command worker drains the credential mail retry queue in its own process.
// Run it instead of relying on the API server's in-process worker when the
// API is scaled out.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"rsih_portal/internal/app/worker"
	"rsih_portal/internal/platform/config"
	"rsih_portal/internal/platform/mail"
	"rsih_portal/internal/platform/queue"
)

func main() {
	log.Println("Mail worker starting...")

	config.Load()
	cfg := config.AppConfig
	if !cfg.RedisEnabled() {
		log.Fatal("REDIS_ADDR must be set to run the mail worker")
	}

	queue.ConnectRedis()
	defer queue.CloseRedis()

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	// Graceful shutdown on SIGINT or SIGTERM
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	mailWorker := worker.NewMailWorker(
		queue.NewRedisMailQueue(queue.RDB, cfg.MailQueueName, cfg.MailQueueTTL),
		mail.NewSMTPMailer(cfg),
		cfg.MailMaxAttempts,
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		mailWorker.Start(ctx)
	}()

	<-sigs
	log.Println("Shutdown signal received.")
	cancel()

	wg.Wait()
	log.Println("Mail worker exited cleanly.")
}
