package submissions

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/IonMich/instructor-pilot/pkg/query"
	"github.com/IonMich/instructor-pilot/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "submissions", "s").
	Project("id", "ID").
	Project("assignment_id", "AssignmentID").
	Project("student", "Student").
	Project("images", "Images").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt").
	Join("public", "versions", "v", "LEFT JOIN", "s.version_id = v.id").
	Project("id", "VersionID").
	Project("name", "VersionName").
	Project("version_image", "VersionImage")

var defaultSort = query.SortField{
	Field: "Student",
}

// Filters contains optional filtering criteria for submission queries.
// Nil fields are ignored. AssignmentID and VersionID use exact matching,
// Student uses case-insensitive contains matching. Unassigned selects
// submissions with no version reference.
type Filters struct {
	AssignmentID *uuid.UUID `json:"assignment_id,omitempty"`
	VersionID    *uuid.UUID `json:"version_id,omitempty"`
	Student      *string    `json:"student,omitempty"`
	Unassigned   *bool      `json:"unassigned,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	b.
		WhereEquals("AssignmentID", f.AssignmentID).
		WhereEquals("VersionID", f.VersionID).
		WhereContains("Student", f.Student)

	if f.Unassigned != nil && *f.Unassigned {
		b.WhereNullable("VersionID", nil)
	}

	return b
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if a := values.Get("assignment_id"); a != "" {
		if id, err := uuid.Parse(a); err == nil {
			f.AssignmentID = &id
		}
	}

	if v := values.Get("version_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.VersionID = &id
		}
	}

	if s := values.Get("student"); s != "" {
		f.Student = &s
	}

	if u := values.Get("unassigned"); u == "true" {
		t := true
		f.Unassigned = &t
	}

	return f
}

func scanSubmission(s repository.Scanner) (Submission, error) {
	var (
		sub       Submission
		rawImages []byte
		verID     uuid.NullUUID
		verName   sql.NullString
		verImage  sql.NullString
	)

	err := s.Scan(
		&sub.ID,
		&sub.AssignmentID,
		&sub.Student,
		&rawImages,
		&sub.CreatedAt,
		&sub.UpdatedAt,
		&verID,
		&verName,
		&verImage,
	)
	if err != nil {
		return sub, err
	}

	if err := json.Unmarshal(rawImages, &sub.Images); err != nil {
		return sub, fmt.Errorf("decode submission images: %w", err)
	}

	if verID.Valid {
		ref := &VersionRef{
			ID:   verID.UUID,
			Name: verName.String,
		}
		if verImage.Valid {
			img := verImage.String
			ref.VersionImage = &img
		}
		sub.Version = ref
	}

	return sub, nil
}
