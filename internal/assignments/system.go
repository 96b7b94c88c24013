package assignments

import (
	"context"

	"github.com/google/uuid"

	"github.com/IonMich/instructor-pilot/pkg/pagination"
)

// System defines the public contract for assignment domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Assignment], error)

	Find(ctx context.Context, id uuid.UUID) (*Assignment, error)
	Create(ctx context.Context, cmd CreateCommand) (*Assignment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateCommand carries the fields required to register an assignment.
type CreateCommand struct {
	Name          string `json:"name"`
	Course        string `json:"course"`
	MaxPageNumber int    `json:"max_page_number"`
}

// Validate checks the command for structurally invalid values.
func (c CreateCommand) Validate() error {
	if c.Name == "" || c.Course == "" {
		return ErrInvalidAssignment
	}
	if c.MaxPageNumber < 1 {
		return ErrInvalidAssignment
	}
	return nil
}
