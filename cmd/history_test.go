package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/model"
)

func TestPrintHistory(t *testing.T) {
	snaps := []model.Snapshot{
		{ID: "s1", Kind: model.KindWorkload, GeneratedAt: time.Date(2026, 3, 9, 8, 5, 0, 0, time.UTC), Filters: model.ReportFilters{WorkspaceID: "ws1"}},
		{ID: "s2", Kind: model.KindTrends, GeneratedAt: time.Date(2026, 3, 9, 17, 30, 0, 0, time.UTC)},
		{ID: "s3", Kind: model.KindActivity, GeneratedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), Filters: model.ReportFilters{WorkspaceID: "ws1"}},
	}
	var buf bytes.Buffer
	printHistory(&buf, snaps, time.UTC)
	out := buf.String()

	if strings.Count(out, "2026-03-09\n") != 1 || strings.Count(out, "2026-03-10\n") != 1 {
		t.Errorf("day headers wrong:\n%s", out)
	}
	for _, want := range []string{"08:05  workload     ws1  s1", "17:30  trends       (none)  s2", "s3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	printHistory(&buf, nil, time.UTC)
	if buf.String() != "No archived reports found.\n" {
		t.Errorf("empty output = %q", buf.String())
	}
}
