package model

// SettingShowSubmissionCounts toggles per-problem submission counts in the public catalog.
const SettingShowSubmissionCounts = "show_submission_counts"

type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
