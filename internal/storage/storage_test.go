package storage_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/model"
	"github.com/bobndungu/boxtasks-prod-sub004/internal/storage"
)

func TestLoadDayNotExist(t *testing.T) {
	base := t.TempDir()
	day := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	df, err := storage.LoadDay(base, day)
	if err != nil {
		t.Fatalf("LoadDay on missing file: %v", err)
	}
	if df.Date != "2026-02-27" {
		t.Errorf("LoadDay date = %q, want %q", df.Date, "2026-02-27")
	}
	if len(df.Snapshots) != 0 {
		t.Errorf("LoadDay snapshots = %d, want 0", len(df.Snapshots))
	}
}

func TestLoadDayCorruptIsBackedUp(t *testing.T) {
	base := t.TempDir()
	day := time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)

	path := filepath.Join(base, "2026", "02", "27.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{bad json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := storage.LoadDay(base, day); err == nil {
		t.Fatal("expected error for corrupt JSON, got nil")
	}
	if _, err := os.Stat(path + ".corrupt"); os.IsNotExist(err) {
		t.Error("expected backup file to exist after corrupt JSON")
	}
}

func TestAppendAndFind(t *testing.T) {
	base := t.TempDir()
	at := time.Date(2026, 2, 27, 15, 4, 0, 0, time.UTC)
	filters := model.ReportFilters{WorkspaceID: "ws-1", MemberIDs: []string{"u1"}}
	rep := model.WorkloadReport{Summary: model.WorkloadSummary{TotalUsers: 3, BalanceIndex: 80}}

	first, err := storage.Append(base, model.KindWorkload, filters, rep, at)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	second, err := storage.Append(base, model.KindTrends, filters, model.TrendsReport{}, at.Add(time.Minute))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if _, err := uuid.Parse(first.ID); err != nil {
		t.Errorf("snapshot id %q is not a uuid: %v", first.ID, err)
	}
	if first.ID == second.ID {
		t.Error("snapshot ids collide")
	}

	df, err := storage.LoadDay(base, at)
	if err != nil {
		t.Fatalf("LoadDay: %v", err)
	}
	if len(df.Snapshots) != 2 {
		t.Fatalf("snapshots = %d, want 2", len(df.Snapshots))
	}

	got, ok, err := storage.Find(base, first.ID, at, at)
	if err != nil || !ok {
		t.Fatalf("Find = %v, %v", ok, err)
	}
	var decoded model.WorkloadReport
	if err := json.Unmarshal(got.Report, &decoded); err != nil {
		t.Fatalf("decoding archived report: %v", err)
	}
	if decoded.Summary.BalanceIndex != 80 || got.Filters.WorkspaceID != "ws-1" {
		t.Errorf("archived snapshot = %+v", got)
	}

	if _, ok, _ := storage.Find(base, "missing", at, at); ok {
		t.Error("Find(missing) reported a match")
	}
}

func TestLoadRange(t *testing.T) {
	base := t.TempDir()
	start := time.Date(2026, 2, 26, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if _, err := storage.Append(base, model.KindPerformance, model.ReportFilters{WorkspaceID: "ws"}, model.PerformanceReport{}, start.AddDate(0, 0, i)); err != nil {
			t.Fatal(err)
		}
	}
	snaps, err := storage.LoadRange(base, start, start.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("LoadRange: %v", err)
	}
	if len(snaps) != 2 {
		t.Errorf("LoadRange = %d snapshots, want 2", len(snaps))
	}
	if !snaps[0].GeneratedAt.Before(snaps[1].GeneratedAt) {
		t.Error("LoadRange not ordered oldest first")
	}
}
