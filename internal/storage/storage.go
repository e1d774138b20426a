// Package storage archives generated reports as one JSON file per day.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/model"
)

// BaseDir returns the report archive directory (~/.boxreport/reports).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".boxreport", "reports"), nil
}

// dayFilePath returns the path for the given date's JSON file.
func dayFilePath(base string, t time.Time) string {
	return filepath.Join(base, t.Format("2006"), t.Format("01"), t.Format("02")+".json")
}

// LoadDay loads the DayFile for the given date. Returns an empty DayFile if not found.
func LoadDay(base string, t time.Time) (model.DayFile, error) {
	path := dayFilePath(base, t)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return model.DayFile{Date: t.Format("2006-01-02"), Snapshots: []model.Snapshot{}}, nil
	}
	if err != nil {
		return model.DayFile{}, fmt.Errorf("storage error reading %s: %w", path, err)
	}

	var df model.DayFile
	if err := json.Unmarshal(data, &df); err != nil {
		// Back up corrupt file and abort.
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return model.DayFile{}, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", path, backupPath, err)
	}
	return df, nil
}

// SaveDay atomically writes a DayFile for the given date.
func SaveDay(base string, t time.Time, df model.DayFile) error {
	path := dayFilePath(base, t)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	data, err := json.MarshalIndent(df, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// Append archives report under a new id in the day file of generatedAt.
func Append(base string, kind model.Kind, filters model.ReportFilters, report any, generatedAt time.Time) (model.Snapshot, error) {
	raw, err := json.Marshal(report)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("storage error marshalling report: %w", err)
	}
	snap := model.Snapshot{
		ID:          uuid.NewString(),
		Kind:        kind,
		GeneratedAt: generatedAt,
		Filters:     filters,
		Report:      raw,
	}

	df, err := LoadDay(base, generatedAt)
	if err != nil {
		return model.Snapshot{}, err
	}
	df.Snapshots = append(df.Snapshots, snap)
	if err := SaveDay(base, generatedAt, df); err != nil {
		return model.Snapshot{}, err
	}
	return snap, nil
}

// LoadRange loads all snapshots in [from, to] inclusive, oldest day first.
func LoadRange(base string, from, to time.Time) ([]model.Snapshot, error) {
	var snaps []model.Snapshot
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		df, err := LoadDay(base, d)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, df.Snapshots...)
	}
	return snaps, nil
}

// Find returns the snapshot with the given id from the days in [from, to].
// ok is false when no such snapshot exists.
func Find(base, id string, from, to time.Time) (model.Snapshot, bool, error) {
	snaps, err := LoadRange(base, from, to)
	if err != nil {
		return model.Snapshot{}, false, err
	}
	for _, s := range snaps {
		if s.ID == id {
			return s, true, nil
		}
	}
	return model.Snapshot{}, false, nil
}
