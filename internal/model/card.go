package model

import (
	"fmt"
	"time"
)

// Label is one of the fixed card label colours.
type Label string

const (
	LabelGreen  Label = "green"
	LabelYellow Label = "yellow"
	LabelOrange Label = "orange"
	LabelRed    Label = "red"
	LabelPurple Label = "purple"
	LabelBlue   Label = "blue"
)

// Labels lists every known label in display order.
var Labels = []Label{LabelGreen, LabelYellow, LabelOrange, LabelRed, LabelPurple, LabelBlue}

// Valid reports whether l is a known label.
func (l Label) Valid() bool {
	for _, known := range Labels {
		if l == known {
			return true
		}
	}
	return false
}

// UserRef is a reference to a user with its resolved display name.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Board is a Kanban board inside a workspace.
type Board struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	WorkspaceID string `json:"workspace_id"`
	Archived    bool   `json:"archived"`
}

// List is a column on a board.
type List struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	BoardID  string `json:"board_id"`
	Position int    `json:"position"`
	Archived bool   `json:"archived"`
}

// Card is a task record on a list.
type Card struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	ListID      string     `json:"list_id"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Labels      []Label    `json:"labels"`
	Completed   bool       `json:"completed"`
	Archived    bool       `json:"archived"`
	Pinned      bool       `json:"pinned"`
	Author      *UserRef   `json:"author,omitempty"`
	Members     []UserRef  `json:"members"`

	Approved   bool       `json:"approved"`
	ApprovedBy *UserRef   `json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	Rejected   bool       `json:"rejected"`
	RejectedBy *UserRef   `json:"rejected_by,omitempty"`
	RejectedAt *time.Time `json:"rejected_at,omitempty"`

	CommentCount       int `json:"comment_count"`
	AttachmentCount    int `json:"attachment_count"`
	ChecklistCompleted int `json:"checklist_completed"`
	ChecklistTotal     int `json:"checklist_total"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Done reports whether the card counts as finished. Archived cards are
// treated as done.
func (c Card) Done() bool {
	return c.Completed || c.Archived
}

// Overdue reports whether the card is still open and its due date is
// before now.
func (c Card) Overdue(now time.Time) bool {
	return !c.Done() && c.DueDate != nil && c.DueDate.Before(now)
}

// AuthorID returns the author's id or "" when the card has no author.
func (c Card) AuthorID() string {
	if c.Author == nil {
		return ""
	}
	return c.Author.ID
}

// Assignees returns the card's members with repeated user ids dropped,
// keeping the first occurrence.
func (c Card) Assignees() []UserRef {
	seen := make(map[string]bool, len(c.Members))
	out := make([]UserRef, 0, len(c.Members))
	for _, m := range c.Members {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		out = append(out, m)
	}
	return out
}

// HasMember reports whether userID is assigned to the card.
func (c Card) HasMember(userID string) bool {
	for _, m := range c.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// Validate checks the card's internal invariants.
func (c Card) Validate() error {
	if c.ChecklistTotal < 0 || c.ChecklistCompleted < 0 {
		return fmt.Errorf("card %s: negative checklist counters", c.ID)
	}
	if c.ChecklistCompleted > c.ChecklistTotal {
		return fmt.Errorf("card %s: checklist completed %d exceeds total %d",
			c.ID, c.ChecklistCompleted, c.ChecklistTotal)
	}
	for _, l := range c.Labels {
		if !l.Valid() {
			return fmt.Errorf("card %s: unknown label %q", c.ID, l)
		}
	}
	return nil
}
