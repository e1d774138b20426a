package boxtasks

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/checklist"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/jsonapi"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/model"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/timecalc"
)

const unknownUserName = "Unknown"

// parseTime parses a backend timestamp. Date-only values are read in UTC.
func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if t, err := timecalc.ParseDate(s, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q", s)
}

func optionalTime(r jsonapi.Resource, name string) (*time.Time, error) {
	s := r.String(name)
	if s == "" {
		return nil, nil
	}
	t, err := parseTime(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &t, nil
}

func requiredTime(r jsonapi.Resource, name string) (time.Time, error) {
	t, err := parseTime(r.String(name))
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", name, err)
	}
	return t, nil
}

// userRef resolves a user identifier against the side-loaded users.
func userRef(id jsonapi.Identifier, users jsonapi.Index) model.UserRef {
	ref := model.UserRef{ID: id.ID, Name: unknownUserName}
	u, ok := users.Lookup(id)
	if !ok {
		return ref
	}
	for _, attr := range []string{"display_name", "name"} {
		if name := u.String(attr); name != "" {
			ref.Name = name
			break
		}
	}
	return ref
}

func optionalUser(r jsonapi.Resource, rel string, users jsonapi.Index) *model.UserRef {
	id, ok := r.ToOne(rel)
	if !ok {
		return nil
	}
	ref := userRef(id, users)
	return &ref
}

// MapBoard converts a node--board resource.
func MapBoard(r jsonapi.Resource) model.Board {
	b := model.Board{ID: r.ID, Title: r.String("title"), Archived: r.Bool("field_board_archived")}
	if ws, ok := r.ToOne("field_board_workspace"); ok {
		b.WorkspaceID = ws.ID
	}
	return b
}

// MapList converts a node--board_list resource.
func MapList(r jsonapi.Resource) model.List {
	l := model.List{
		ID:       r.ID,
		Title:    r.String("title"),
		Position: r.Int("field_list_position"),
		Archived: r.Bool("field_list_archived"),
	}
	if b, ok := r.ToOne("field_list_board"); ok {
		l.BoardID = b.ID
	}
	return l
}

// MapCard converts a node--card resource, resolving user references
// through users.
func MapCard(r jsonapi.Resource, users jsonapi.Index) (model.Card, error) {
	created, err := requiredTime(r, "created")
	if err != nil {
		return model.Card{}, fmt.Errorf("card %s: %w", r.ID, err)
	}
	changed, err := requiredTime(r, "changed")
	if err != nil {
		return model.Card{}, fmt.Errorf("card %s: %w", r.ID, err)
	}

	c := model.Card{
		ID:                 r.ID,
		Title:              r.String("title"),
		Description:        r.StringPtr("field_card_description"),
		Completed:          r.Bool("field_card_completed"),
		Archived:           r.Bool("field_card_archived"),
		Pinned:             r.Bool("field_card_pinned"),
		Approved:           r.Bool("field_card_approved"),
		Rejected:           r.Bool("field_card_rejected"),
		CommentCount:       r.Int("field_card_comment_count"),
		AttachmentCount:    r.Int("field_card_attachment_count"),
		ChecklistCompleted: r.Int("field_card_checklist_completed"),
		ChecklistTotal:     r.Int("field_card_checklist_total"),
		Labels:             []model.Label{},
		Members:            []model.UserRef{},
		CreatedAt:          created,
		UpdatedAt:          changed,
	}
	if l, ok := r.ToOne("field_card_list"); ok {
		c.ListID = l.ID
	}

	for name, dst := range map[string]**time.Time{
		"field_card_start_date":  &c.StartDate,
		"field_card_due_date":    &c.DueDate,
		"field_card_approved_at": &c.ApprovedAt,
		"field_card_rejected_at": &c.RejectedAt,
	} {
		t, err := optionalTime(r, name)
		if err != nil {
			return model.Card{}, fmt.Errorf("card %s: %w", r.ID, err)
		}
		*dst = t
	}

	for _, s := range r.Strings("field_card_labels") {
		l := model.Label(s)
		if l.Valid() {
			c.Labels = append(c.Labels, l)
		}
	}

	c.Author = optionalUser(r, "uid", users)
	c.ApprovedBy = optionalUser(r, "field_card_approved_by", users)
	c.RejectedBy = optionalUser(r, "field_card_rejected_by", users)
	for _, id := range r.ToMany("field_card_members") {
		c.Members = append(c.Members, userRef(id, users))
	}

	if err := applyChecklist(&c, r); err != nil {
		return model.Card{}, fmt.Errorf("card %s: %w", r.ID, err)
	}
	// Counters are denormalized on the backend and can drift.
	c.ChecklistTotal = max(c.ChecklistTotal, 0)
	c.ChecklistCompleted = min(max(c.ChecklistCompleted, 0), c.ChecklistTotal)

	if err := c.Validate(); err != nil {
		return model.Card{}, err
	}
	return c, nil
}

// applyChecklist recounts the checklist counters from the nested item tree
// when the card carries one. Cards without it keep the stored counters.
func applyChecklist(c *model.Card, r jsonapi.Resource) error {
	raw, err := r.Raw("field_card_checklist")
	if err != nil || raw == nil {
		return err
	}
	var items []*checklist.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("field_card_checklist: %w", err)
	}
	tree, err := checklist.Load(items, nil, checklist.DefaultMaxDepth)
	if err != nil {
		return fmt.Errorf("field_card_checklist: %w", err)
	}
	c.ChecklistCompleted, c.ChecklistTotal = tree.Counts()
	return nil
}

// MapActivity converts a node--activity resource.
func MapActivity(r jsonapi.Resource, users jsonapi.Index) (model.Activity, error) {
	created, err := requiredTime(r, "created")
	if err != nil {
		return model.Activity{}, fmt.Errorf("activity %s: %w", r.ID, err)
	}
	a := model.Activity{
		ID:          r.ID,
		Type:        model.ActivityType(r.String("field_activity_type")),
		Description: r.String("field_activity_description"),
		Author:      optionalUser(r, "uid", users),
		CreatedAt:   created,
	}
	if c, ok := r.ToOne("field_activity_card"); ok {
		a.CardID = c.ID
	}
	if b, ok := r.ToOne("field_activity_board"); ok {
		a.BoardID = b.ID
	}

	// The payload is stored as serialized JSON text; older entries carry
	// the object inline.
	if s := r.String("field_activity_data"); s != "" {
		if json.Valid([]byte(s)) {
			a.Data = json.RawMessage(s)
		}
	} else {
		raw, err := r.Raw("field_activity_data")
		if err != nil {
			return model.Activity{}, fmt.Errorf("activity %s: %w", r.ID, err)
		}
		a.Data = raw
	}
	return a, nil
}
