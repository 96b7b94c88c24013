package assignments

import (
	"net/url"

	"github.com/IonMich/instructor-pilot/pkg/query"
	"github.com/IonMich/instructor-pilot/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "assignments", "a").
	Project("id", "ID").
	Project("name", "Name").
	Project("course", "Course").
	Project("max_page_number", "MaxPageNumber").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for assignment queries.
// Nil fields are ignored. Course uses exact matching, Name uses
// case-insensitive contains matching.
type Filters struct {
	Name   *string `json:"name,omitempty"`
	Course *string `json:"course,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("Name", f.Name).
		WhereEquals("Course", f.Course)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}

	if c := values.Get("course"); c != "" {
		f.Course = &c
	}

	return f
}

func scanAssignment(s repository.Scanner) (Assignment, error) {
	var a Assignment
	err := s.Scan(
		&a.ID,
		&a.Name,
		&a.Course,
		&a.MaxPageNumber,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}
