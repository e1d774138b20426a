package report

import (
	"sort"

	"github.com/bobndungu/boxtasks-prod-sub004/internal/model"
)

var activityLabels = map[model.ActivityType]string{
	model.ActivityCardCreated:            "Card created",
	model.ActivityCardUpdated:            "Card updated",
	model.ActivityCardMoved:              "Card moved",
	model.ActivityCardArchived:           "Card archived",
	model.ActivityCardRestored:           "Card restored",
	model.ActivityCardDeleted:            "Card deleted",
	model.ActivityCardCompleted:          "Card completed",
	model.ActivityCardUncompleted:        "Card reopened",
	model.ActivityCardPinned:             "Card pinned",
	model.ActivityCardUnpinned:           "Card unpinned",
	model.ActivityCardApproved:           "Card approved",
	model.ActivityCardRejected:           "Card rejected",
	model.ActivityTitleUpdated:           "Title changed",
	model.ActivityDescriptionUpdated:     "Description changed",
	model.ActivityDueDateAdded:           "Due date added",
	model.ActivityDueDateUpdated:         "Due date changed",
	model.ActivityDueDateRemoved:         "Due date removed",
	model.ActivityStartDateAdded:         "Start date added",
	model.ActivityStartDateUpdated:       "Start date changed",
	model.ActivityStartDateRemoved:       "Start date removed",
	model.ActivityLabelAdded:             "Label added",
	model.ActivityLabelRemoved:           "Label removed",
	model.ActivityMemberAdded:            "Member assigned",
	model.ActivityMemberRemoved:          "Member unassigned",
	model.ActivityWatcherAdded:           "Watcher added",
	model.ActivityWatcherRemoved:         "Watcher removed",
	model.ActivityCommentAdded:           "Comment added",
	model.ActivityCommentUpdated:         "Comment edited",
	model.ActivityCommentDeleted:         "Comment deleted",
	model.ActivityAttachmentAdded:        "Attachment added",
	model.ActivityAttachmentRemoved:      "Attachment removed",
	model.ActivityChecklistAdded:         "Checklist added",
	model.ActivityChecklistRemoved:       "Checklist removed",
	model.ActivityChecklistItemCompleted: "Checklist item completed",
	model.ActivityChecklistItemReopened:  "Checklist item reopened",
	model.ActivityCustomFieldUpdated:     "Custom field changed",
	model.ActivityListCreated:            "List created",
	model.ActivityListUpdated:            "List updated",
	model.ActivityListArchived:           "List archived",
	model.ActivityBoardCreated:           "Board created",
	model.ActivityBoardUpdated:           "Board updated",
	model.ActivityBoardMemberAdded:       "Board member added",
	model.ActivityBoardMemberRemoved:     "Board member removed",
	model.ActivityMindMapUpdated:         "Mind map updated",
}

// ActivityLabel returns the display label for t. Unknown types are shown as
// their raw type string.
func ActivityLabel(t model.ActivityType) string {
	if label, ok := activityLabels[t]; ok {
		return label
	}
	return string(t)
}

// placeholderCardTitle stands in for a card title; titles are not joined
// into the activity feed.
func placeholderCardTitle(cardID string) string {
	prefix := cardID
	if len(prefix) > 8 {
		prefix = prefix[:8]
	}
	return "Card " + prefix
}

// Activity groups activity entries by type, author and card. activities are
// expected newest first; the recent feed keeps that order.
func Activity(activities []model.Activity, filters model.ReportFilters) model.ActivityReport {
	typeCounts := map[model.ActivityType]int{}
	var typeOrder []model.ActivityType

	users := newUserIndex()
	userCounts := map[string]int{}

	cardCounts := map[string]int{}
	var cardOrder []string

	for _, a := range activities {
		if _, seen := typeCounts[a.Type]; !seen {
			typeOrder = append(typeOrder, a.Type)
		}
		typeCounts[a.Type]++

		if a.Author != nil && a.Author.ID != "" {
			users.add(a.Author)
			userCounts[a.Author.ID]++
		}

		if a.CardID != "" {
			if _, seen := cardCounts[a.CardID]; !seen {
				cardOrder = append(cardOrder, a.CardID)
			}
			cardCounts[a.CardID]++
		}
	}

	byType := make([]model.TypeCount, 0, len(typeOrder))
	for _, t := range typeOrder {
		byType = append(byType, model.TypeCount{Type: t, Label: ActivityLabel(t), Count: typeCounts[t]})
	}
	sort.SliceStable(byType, func(i, j int) bool {
		return byType[i].Count > byType[j].Count
	})

	byUser := make([]model.MemberCount, 0, len(users.order))
	for _, id := range users.order {
		byUser = append(byUser, model.MemberCount{User: users.refs[id], Count: userCounts[id]})
	}
	sort.SliceStable(byUser, func(i, j int) bool {
		return byUser[i].Count > byUser[j].Count
	})

	cards := make([]model.CardActivity, 0, len(cardOrder))
	for _, id := range cardOrder {
		cards = append(cards, model.CardActivity{CardID: id, Title: placeholderCardTitle(id), Count: cardCounts[id]})
	}
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].Count > cards[j].Count
	})

	return model.ActivityReport{
		DateRange:       filters.DateRange,
		TotalActivities: len(activities),
		ByType:          byType,
		ByUser:          topN(byUser, activityUserLimit),
		MostActiveCards: topN(cards, activityCardLimit),
		Recent:          topN(activities, recentActivityLimit),
	}
}
