// Package assignments implements the assignment domain for Instructor Pilot.
// An assignment is the unit of review: scanned submissions, computed versions,
// and the review session all hang off a single assignment.
package assignments

import (
	"time"

	"github.com/google/uuid"
)

// Assignment represents a course assignment whose scanned submissions are
// reviewed through the versioning surface. MaxPageNumber is the page index
// domain shared by every submission carousel for the assignment.
type Assignment struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Course        string    `json:"course"`
	MaxPageNumber int       `json:"max_page_number"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
