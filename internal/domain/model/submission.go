package model

import "time"

const SubmissionStatusSubmitted = "SUBMITTED"

type Submission struct {
	ID          int64     `json:"id"`
	TeamID      int64     `json:"team_id"`
	PsID        int64     `json:"ps_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Abstract    *string   `json:"abstract,omitempty"`
	PptURL      *string   `json:"ppt_url,omitempty"`
	YtLink      *string   `json:"yt_link,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	TeamName    *string   `json:"team_name,omitempty"` // For admin listing
	PsTitle     *string   `json:"ps_title,omitempty"`  // For admin listing
}
