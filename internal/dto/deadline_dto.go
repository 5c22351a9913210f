package dto

import (
	"time"

	"github.com/google/uuid"
)

const (
	DeadlineTypeProject    = "project"
	DeadlineTypeAssignment = "assignment"
)

// DeadlineItem is one entry of the unified per-student deadline feed, merged
// from class projects and group assignments.
type DeadlineItem struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Deadline    time.Time `json:"deadline"`
	Type        string    `json:"type"`   // project | assignment
	Source      string    `json:"source"` // class or group name
	Description string    `json:"description"`
}
