package worker

import (
	"context"
	"log"
	"time"

	"rsih_portal/internal/domain/model"
	"rsih_portal/internal/platform/mail"
	"rsih_portal/internal/platform/queue"
)

// MailWorker redelivers team credential emails that failed during registration.
type MailWorker struct {
	queue       queue.MailQueue
	mailer      mail.Mailer
	maxAttempts int
	pollTimeout time.Duration
	retryDelay  time.Duration
}

func NewMailWorker(q queue.MailQueue, mailer mail.Mailer, maxAttempts int) *MailWorker {
	return &MailWorker{
		queue:       q,
		mailer:      mailer,
		maxAttempts: maxAttempts,
		pollTimeout: 5 * time.Second,
		retryDelay:  30 * time.Second,
	}
}

func (w *MailWorker) Start(ctx context.Context) {
	log.Println("Mail worker started")
	for {
		select {
		case <-ctx.Done():
			log.Println("Mail worker stopping...")
			return
		default:
			job, err := w.queue.Pop(ctx, w.pollTimeout)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				log.Printf("ERROR: Failed to pop from mail queue: %v", err)
				w.sleep(ctx, 5*time.Second) // Wait before retrying on queue errors
				continue
			}
			if job == nil {
				continue
			}
			w.process(ctx, job)
		}
	}
}

func (w *MailWorker) process(ctx context.Context, job *model.MailJob) {
	err := w.mailer.SendCredentials(ctx, *job)
	if err == nil {
		log.Printf("INFO: credentials email %s delivered to %s after %d failed attempt(s)", job.ID, job.To, job.Attempts)
		return
	}

	job.Attempts++
	lastErr := err.Error()
	job.LastError = &lastErr
	if job.Attempts >= w.maxAttempts {
		log.Printf("ERROR: giving up on credentials email %s to %s after %d attempts: %v", job.ID, job.To, job.Attempts, err)
		return
	}

	log.Printf("WARN: credentials email %s to %s failed (attempt %d/%d): %v", job.ID, job.To, job.Attempts, w.maxAttempts, err)
	w.sleep(ctx, w.retryDelay)
	// Requeue with a fresh context so a shutdown does not drop the job.
	if err := w.queue.Push(context.WithoutCancel(ctx), *job); err != nil {
		log.Printf("ERROR: Failed to re-queue credentials email %s: %v", job.ID, err)
	}
}

func (w *MailWorker) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
