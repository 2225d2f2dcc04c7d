package model

import (
	"time"
)

type ProblemStatement struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Type        *string   `json:"type,omitempty"`
	Category    *string   `json:"category,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	// SubmissionCount is only populated when the public catalog shows counts.
	SubmissionCount *int `json:"submission_count,omitempty"`
}
