package checks

import "time"

// ResumeCheck is one completed ATS analysis. Records are append-only: once
// written they are never updated or deleted.
type ResumeCheck struct {
	ID              string
	UserID          string
	CheckedAt       time.Time
	RawFileRef      string
	Score           int
	StrongKeywords  []string
	MissingKeywords []string
	Suggestions     []string
}
