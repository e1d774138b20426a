// Package report turns fetched cards and activities into the five report
// shapes. Every pass is a pure function of its inputs; nothing is shared
// between calls.
package report

import (
	"math"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/model"
)

const (
	topPerformersLimit  = 5
	needsAttentionLimit = 5
	overloadedLimit     = 5
	leastLoadedLimit    = 5
	overdueMemberLimit  = 10
	activityUserLimit   = 10
	activityCardLimit   = 10
	recentActivityLimit = 50

	// minAssignedForRanking is the assignment count a user needs before
	// their completion rate is ranked.
	minAssignedForRanking = 5
	// attentionRateThreshold flags ranked users completing less than this
	// percentage of their cards.
	attentionRateThreshold = 50
)

// userIndex keeps users in first-seen order with O(1) lookup.
type userIndex struct {
	order []string
	refs  map[string]model.UserRef
}

func newUserIndex() *userIndex {
	return &userIndex{refs: map[string]model.UserRef{}}
}

// add registers ref and reports whether it was new. Empty ids are ignored.
func (u *userIndex) add(ref *model.UserRef) bool {
	if ref == nil || ref.ID == "" {
		return false
	}
	if _, seen := u.refs[ref.ID]; seen {
		return false
	}
	u.refs[ref.ID] = *ref
	u.order = append(u.order, ref.ID)
	return true
}

func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func topN[T any](items []T, n int) []T {
	if len(items) > n {
		items = items[:n]
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}
