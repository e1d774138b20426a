package model

import "time"

// UserPerformanceStats is the per-user outcome of the performance pass.
type UserPerformanceStats struct {
	User                   UserRef `json:"user"`
	CardsCreated           int     `json:"cards_created"`
	CardsAssigned          int     `json:"cards_assigned"`
	CardsCompleted         int     `json:"cards_completed"`
	CompletedOnTime        int     `json:"completed_on_time"`
	CompletedLate          int     `json:"completed_late"`
	OverdueCards           int     `json:"overdue_cards"`
	Approvals              int     `json:"approvals"`
	Rejections             int     `json:"rejections"`
	CompletionRate         int     `json:"completion_rate"`
	AvgCompletionTimeHours *int    `json:"avg_completion_time_hours"`
}

// PerformanceSummary totals the performance pass.
type PerformanceSummary struct {
	TotalUsers            int `json:"total_users"`
	TotalCardsCreated     int `json:"total_cards_created"`
	TotalCardsCompleted   int `json:"total_cards_completed"`
	TotalOverdue          int `json:"total_overdue"`
	AverageCompletionRate int `json:"average_completion_rate"`
}

// PerformanceReport is the assembled performance report.
type PerformanceReport struct {
	DateRange      DateRange              `json:"date_range"`
	Users          []UserPerformanceStats `json:"users"`
	TopPerformers  []UserPerformanceStats `json:"top_performers"`
	NeedsAttention []UserPerformanceStats `json:"needs_attention"`
	Summary        PerformanceSummary     `json:"summary"`
}

// DurationBucket is one histogram bin of completion times.
type DurationBucket struct {
	Label      string   `json:"label"`
	MinHours   float64  `json:"min_hours"`
	MaxHours   *float64 `json:"max_hours"`
	Count      int      `json:"count"`
	Percentage int      `json:"percentage"`
}

// OverdueBucket is one bin of the days-overdue analysis.
type OverdueBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// MemberCount pairs a user with a tally.
type MemberCount struct {
	User  UserRef `json:"user"`
	Count int     `json:"count"`
}

// OverdueAnalysis breaks open, past-due cards down by age and assignee.
type OverdueAnalysis struct {
	Total    int             `json:"total"`
	ByDays   []OverdueBucket `json:"by_days"`
	ByMember []MemberCount   `json:"by_member"`
}

// TaskDurationReport is the assembled duration report.
type TaskDurationReport struct {
	DateRange      DateRange        `json:"date_range"`
	TotalCompleted int              `json:"total_completed"`
	AverageHours   *float64         `json:"average_hours"`
	MedianHours    *float64         `json:"median_hours"`
	Buckets        []DurationBucket `json:"buckets"`
	Overdue        OverdueAnalysis  `json:"overdue"`
}

// UserWorkloadStats is the per-user outcome of the workload pass.
type UserWorkloadStats struct {
	User                   UserRef `json:"user"`
	OpenCards              int     `json:"open_cards"`
	CompletedCards         int     `json:"completed_cards"`
	OverdueCards           int     `json:"overdue_cards"`
	RejectedCards          int     `json:"rejected_cards"`
	CardsCreatedThisPeriod int     `json:"cards_created_this_period"`
	WorkloadScore          int     `json:"workload_score"`
}

// WorkloadSummary totals the workload pass.
type WorkloadSummary struct {
	TotalUsers       int     `json:"total_users"`
	TotalOpenCards   int     `json:"total_open_cards"`
	AverageOpenCards float64 `json:"average_open_cards"`
	BalanceIndex     int     `json:"balance_index"`
}

// WorkloadReport is the assembled workload report.
type WorkloadReport struct {
	DateRange      DateRange           `json:"date_range"`
	Users          []UserWorkloadStats `json:"users"`
	MostOverloaded []UserWorkloadStats `json:"most_overloaded"`
	LeastLoaded    []UserWorkloadStats `json:"least_loaded"`
	Summary        WorkloadSummary     `json:"summary"`
}

// Granularity is the bucket size of a trend series.
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// TrendDataPoint is one period of a trend series.
type TrendDataPoint struct {
	Date  time.Time `json:"date"`
	Label string    `json:"label"`
	Value float64   `json:"value"`
}

// TrendsSummary totals the trend series.
type TrendsSummary struct {
	TotalCreated   int     `json:"total_created"`
	TotalCompleted int     `json:"total_completed"`
	TotalOverdue   int     `json:"total_overdue"`
	AvgVelocity    float64 `json:"avg_velocity"`
}

// TrendsReport is the assembled trends report.
type TrendsReport struct {
	DateRange         DateRange        `json:"date_range"`
	Granularity       Granularity      `json:"granularity"`
	CreatedOverTime   []TrendDataPoint `json:"created_over_time"`
	CompletedOverTime []TrendDataPoint `json:"completed_over_time"`
	OverdueOverTime   []TrendDataPoint `json:"overdue_over_time"`
	Velocity          []TrendDataPoint `json:"velocity"`
	Summary           TrendsSummary    `json:"summary"`
}

// TypeCount tallies activities of one type.
type TypeCount struct {
	Type  ActivityType `json:"type"`
	Label string       `json:"label"`
	Count int          `json:"count"`
}

// CardActivity tallies activities attached to one card.
type CardActivity struct {
	CardID string `json:"card_id"`
	Title  string `json:"title"`
	Count  int    `json:"count"`
}

// ActivityReport is the assembled activity report.
type ActivityReport struct {
	DateRange       DateRange      `json:"date_range"`
	TotalActivities int            `json:"total_activities"`
	ByType          []TypeCount    `json:"by_type"`
	ByUser          []MemberCount  `json:"by_user"`
	MostActiveCards []CardActivity `json:"most_active_cards"`
	Recent          []Activity     `json:"recent"`
}
