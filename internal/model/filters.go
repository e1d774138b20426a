package model

import (
	"strings"
	"time"
)

// DateRange is an inclusive [Start, End] window.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// ReportFilters scopes a report request.
type ReportFilters struct {
	WorkspaceID     string    `json:"workspace_id"`
	BoardIDs        []string  `json:"board_ids,omitempty"`
	MemberIDs       []string  `json:"member_ids,omitempty"`
	DateRange       DateRange `json:"date_range"`
	IncludeArchived bool      `json:"include_archived"`
}

// HasWorkspace reports whether a workspace id is set.
func (f ReportFilters) HasWorkspace() bool {
	return strings.TrimSpace(f.WorkspaceID) != ""
}

// SplitIDs parses a comma-separated id list, dropping blanks.
func SplitIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// ChunkIDs splits ids into consecutive groups of at most size. A size of
// zero or less keeps all ids in one group.
func ChunkIDs(ids []string, size int) [][]string {
	if len(ids) == 0 {
		return nil
	}
	if size <= 0 {
		size = len(ids)
	}
	out := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		out = append(out, ids[start:min(start+size, len(ids))])
	}
	return out
}

// Kind names one of the report types.
type Kind string

const (
	KindPerformance Kind = "performance"
	KindDuration    Kind = "duration"
	KindWorkload    Kind = "workload"
	KindTrends      Kind = "trends"
	KindActivity    Kind = "activity"
)

// Kinds lists every report kind in display order.
var Kinds = []Kind{KindPerformance, KindDuration, KindWorkload, KindTrends, KindActivity}

// ParseKind resolves a report kind from user input.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, true
		}
	}
	return "", false
}
