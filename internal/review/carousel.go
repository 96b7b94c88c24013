package review

import (
	"github.com/google/uuid"
)

// Carousel tracks one pane's viewer state: which member submission is
// centered and which page is displayed. Pages share the assignment-wide
// domain 1..maxPage. Navigation is purely local; it never touches the
// backend.
type Carousel struct {
	members []uuid.UUID
	active  int
	page    int
	maxPage int
}

// NewCarousel creates a carousel over a group's member order, centered on
// the first member at page 1.
func NewCarousel(group *Group, maxPage int) *Carousel {
	c := &Carousel{
		members: make([]uuid.UUID, len(group.Members)),
		page:    1,
		maxPage: maxPage,
	}
	for i, sub := range group.Members {
		c.members[i] = sub.ID
	}
	return c
}

// Active returns the centered submission id, or uuid.Nil for an empty pane.
func (c *Carousel) Active() uuid.UUID {
	if len(c.members) == 0 {
		return uuid.Nil
	}
	return c.members[c.active]
}

// AtFirst reports whether the centered submission is the first member.
// The prev affordance is disabled at the first member.
func (c *Carousel) AtFirst() bool {
	return c.active == 0
}

// AtLast reports whether the centered submission is the last member.
// The next affordance is disabled at the last member.
func (c *Carousel) AtLast() bool {
	return c.active >= len(c.members)-1
}

// Next centers the following member. Returns false at the last member.
func (c *Carousel) Next() bool {
	if c.AtLast() {
		return false
	}
	c.active++
	return true
}

// Prev centers the preceding member. Returns false at the first member.
func (c *Carousel) Prev() bool {
	if c.AtFirst() {
		return false
	}
	c.active--
	return true
}

// Page returns the currently displayed page number.
func (c *Carousel) Page() int {
	return c.page
}

// SetPage displays the given page across the pane's viewers.
func (c *Carousel) SetPage(page int) error {
	if page < 1 || page > c.maxPage {
		return ErrInvalidPage
	}
	c.page = page
	return nil
}

// Sync rebuilds the member order from a refreshed group, keeping the
// centered submission when it survived the refresh and clamping otherwise.
func (c *Carousel) Sync(group *Group) {
	current := c.Active()

	c.members = c.members[:0]
	c.active = 0
	for i, sub := range group.Members {
		c.members = append(c.members, sub.ID)
		if sub.ID == current {
			c.active = i
		}
	}
}
