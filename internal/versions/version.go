// Package versions implements the version domain: the groups produced by the
// clustering pass, plus the instructor comments attached to each version.
package versions

import (
	"time"

	"github.com/google/uuid"
)

// Version represents one cluster of submissions within an assignment.
// Versions are created only by applying a clustering result; membership is
// tracked on the submission side.
type Version struct {
	ID           uuid.UUID `json:"id"`
	AssignmentID uuid.UUID `json:"assignment_id"`
	Name         string    `json:"name"`
	VersionImage *string   `json:"version_image,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// TextComment is an instructor note attached to a version.
type TextComment struct {
	ID        uuid.UUID `json:"id"`
	VersionID uuid.UUID `json:"version_id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// FileComment is a file attachment (typically a worked-solution PDF) on a
// version. URL is the download endpoint for the stored blob; PageCount is
// populated for PDF attachments.
type FileComment struct {
	ID          uuid.UUID `json:"id"`
	VersionID   uuid.UUID `json:"version_id"`
	Author      string    `json:"author"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	StorageKey  string    `json:"storage_key"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	PageCount   *int      `json:"page_count,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// CommentSets holds every comment for an assignment keyed by version id,
// matching the version_texts / version_pdfs wire shape.
type CommentSets struct {
	Texts map[uuid.UUID][]TextComment `json:"version_texts"`
	Files map[uuid.UUID][]FileComment `json:"version_pdfs"`
}

// VersionSpec describes one version in a clustering result: its display
// fields plus the submissions assigned to it.
type VersionSpec struct {
	Name         string      `json:"name"`
	VersionImage *string     `json:"version_image,omitempty"`
	Members      []uuid.UUID `json:"members"`
}
