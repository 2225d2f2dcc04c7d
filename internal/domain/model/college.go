package model

import "time"

type College struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	SpocID    int64     `json:"spoc_id"`
	CreatedAt time.Time `json:"created_at"`
}
