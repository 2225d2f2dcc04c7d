package model

import "time"

// MailJob is a team credentials email waiting for (re)delivery.
type MailJob struct {
	ID         string    `json:"id"`
	To         string    `json:"to"`
	Name       string    `json:"name"`
	TeamName   string    `json:"team_name"`
	Password   string    `json:"password"`
	Attempts   int       `json:"attempts"`
	LastError  *string   `json:"last_error,omitempty"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}
