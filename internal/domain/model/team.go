package model

import "time"

// MaxTeamMembers includes the leader, who is always member 1.
const MaxTeamMembers = 4

type Team struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	CollegeID   int64        `json:"college_id"`
	LeaderID    int64        `json:"leader_id"`
	LeaderName  string       `json:"leader_name,omitempty"`
	LeaderEmail string       `json:"leader_email,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	Members     []TeamMember `json:"members,omitempty"`
}

type TeamMember struct {
	ID       int64   `json:"id"`
	TeamID   int64   `json:"team_id"`
	Position int     `json:"position"`
	Name     string  `json:"name"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Branch   *string `json:"branch,omitempty"`
	Stream   *string `json:"stream,omitempty"`
	Year     *string `json:"year,omitempty"`
}
