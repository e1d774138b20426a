package model

import (
	"encoding/json"
	"time"
)

// Snapshot is a generated report archived on disk.
type Snapshot struct {
	ID          string          `json:"id"`
	Kind        Kind            `json:"kind"`
	GeneratedAt time.Time       `json:"generated_at"`
	Filters     ReportFilters   `json:"filters"`
	Report      json.RawMessage `json:"report"`
}

// DayFile holds the snapshots generated on one calendar day.
type DayFile struct {
	Date      string     `json:"date"`
	Snapshots []Snapshot `json:"snapshots"`
}
