package model_test

import (
	"testing"
	"time"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/model"
)

func TestCardValidate(t *testing.T) {
	tests := []struct {
		name    string
		card    model.Card
		wantErr bool
	}{
		{"empty", model.Card{ID: "c1"}, false},
		{"checklist ok", model.Card{ID: "c2", ChecklistCompleted: 2, ChecklistTotal: 3}, false},
		{"checklist overflow", model.Card{ID: "c3", ChecklistCompleted: 4, ChecklistTotal: 3}, true},
		{"negative", model.Card{ID: "c4", ChecklistCompleted: -1}, true},
		{"known label", model.Card{ID: "c5", Labels: []model.Label{model.LabelRed}}, false},
		{"unknown label", model.Card{ID: "c6", Labels: []model.Label{"pink"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.card.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCardOverdue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	tests := []struct {
		name string
		card model.Card
		want bool
	}{
		{"no due date", model.Card{}, false},
		{"past due open", model.Card{DueDate: &yesterday}, true},
		{"future due", model.Card{DueDate: &tomorrow}, false},
		{"past due completed", model.Card{DueDate: &yesterday, Completed: true}, false},
		{"past due archived", model.Card{DueDate: &yesterday, Archived: true}, false},
	}
	for _, tt := range tests {
		if got := tt.card.Overdue(now); got != tt.want {
			t.Errorf("%s: Overdue() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestActivityChange(t *testing.T) {
	a := model.Activity{Data: []byte(`{"old_value":"Todo","new_value":"Doing"}`)}
	vc, ok := a.Change()
	if !ok {
		t.Fatal("expected a value change")
	}
	if *vc.Old != "Todo" || *vc.New != "Doing" {
		t.Errorf("Change() = %q -> %q, want Todo -> Doing", *vc.Old, *vc.New)
	}

	if _, ok := (model.Activity{}).Change(); ok {
		t.Error("empty payload should not decode as a change")
	}
	if _, ok := (model.Activity{Data: []byte(`{"watcher":"u1"}`)}).Change(); ok {
		t.Error("payload without old/new should not decode as a change")
	}
}

func TestParseKind(t *testing.T) {
	if k, ok := model.ParseKind(" Trends "); !ok || k != model.KindTrends {
		t.Errorf("ParseKind(Trends) = %q, %v", k, ok)
	}
	if _, ok := model.ParseKind("burndown"); ok {
		t.Error("ParseKind(burndown) should fail")
	}
}

func TestSplitIDs(t *testing.T) {
	got := model.SplitIDs(" b1, ,b2,")
	if len(got) != 2 || got[0] != "b1" || got[1] != "b2" {
		t.Errorf("SplitIDs = %v", got)
	}
	if model.SplitIDs("") != nil {
		t.Error("SplitIDs(\"\") should be nil")
	}
}

func TestChunkIDs(t *testing.T) {
	ids := make([]string, 120)
	for i := range ids {
		ids[i] = string(rune('a' + i%26))
	}
	tests := []struct {
		name  string
		ids   []string
		size  int
		sizes []int
	}{
		{"even split", ids[:100], 50, []int{50, 50}},
		{"remainder", ids, 50, []int{50, 50, 20}},
		{"smaller than size", ids[:3], 50, []int{3}},
		{"non-positive size", ids, 0, []int{120}},
		{"empty", nil, 50, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := model.ChunkIDs(tt.ids, tt.size)
			if len(got) != len(tt.sizes) {
				t.Fatalf("ChunkIDs gave %d chunks, want %d", len(got), len(tt.sizes))
			}
			for i, c := range got {
				if len(c) != tt.sizes[i] {
					t.Errorf("chunk %d has %d ids, want %d", i, len(c), tt.sizes[i])
				}
			}
		})
	}
}

func TestCardAssignees(t *testing.T) {
	c := model.Card{Members: []model.UserRef{{ID: "u1", Name: "Ann"}, {ID: "u2"}, {ID: "u1", Name: "Ann again"}}}
	got := c.Assignees()
	if len(got) != 2 || got[0].Name != "Ann" || got[1].ID != "u2" {
		t.Errorf("Assignees = %+v, want u1 (first copy), u2", got)
	}
	if got := (model.Card{}).Assignees(); len(got) != 0 {
		t.Errorf("Assignees of empty card = %v", got)
	}
}
