package model

import (
	"encoding/json"
	"time"
)

// ActivityType identifies what an activity entry records.
type ActivityType string

const (
	ActivityCardCreated            ActivityType = "card_created"
	ActivityCardUpdated            ActivityType = "card_updated"
	ActivityCardMoved              ActivityType = "card_moved"
	ActivityCardArchived           ActivityType = "card_archived"
	ActivityCardRestored           ActivityType = "card_restored"
	ActivityCardDeleted            ActivityType = "card_deleted"
	ActivityCardCompleted          ActivityType = "card_completed"
	ActivityCardUncompleted        ActivityType = "card_uncompleted"
	ActivityCardPinned             ActivityType = "card_pinned"
	ActivityCardUnpinned           ActivityType = "card_unpinned"
	ActivityCardApproved           ActivityType = "card_approved"
	ActivityCardRejected           ActivityType = "card_rejected"
	ActivityTitleUpdated           ActivityType = "title_updated"
	ActivityDescriptionUpdated     ActivityType = "description_updated"
	ActivityDueDateAdded           ActivityType = "due_date_added"
	ActivityDueDateUpdated         ActivityType = "due_date_updated"
	ActivityDueDateRemoved         ActivityType = "due_date_removed"
	ActivityStartDateAdded         ActivityType = "start_date_added"
	ActivityStartDateUpdated       ActivityType = "start_date_updated"
	ActivityStartDateRemoved       ActivityType = "start_date_removed"
	ActivityLabelAdded             ActivityType = "label_added"
	ActivityLabelRemoved           ActivityType = "label_removed"
	ActivityMemberAdded            ActivityType = "member_added"
	ActivityMemberRemoved          ActivityType = "member_removed"
	ActivityWatcherAdded           ActivityType = "watcher_added"
	ActivityWatcherRemoved         ActivityType = "watcher_removed"
	ActivityCommentAdded           ActivityType = "comment_added"
	ActivityCommentUpdated         ActivityType = "comment_updated"
	ActivityCommentDeleted         ActivityType = "comment_deleted"
	ActivityAttachmentAdded        ActivityType = "attachment_added"
	ActivityAttachmentRemoved      ActivityType = "attachment_removed"
	ActivityChecklistAdded         ActivityType = "checklist_added"
	ActivityChecklistRemoved       ActivityType = "checklist_removed"
	ActivityChecklistItemCompleted ActivityType = "checklist_item_completed"
	ActivityChecklistItemReopened  ActivityType = "checklist_item_uncompleted"
	ActivityCustomFieldUpdated     ActivityType = "custom_field_updated"
	ActivityListCreated            ActivityType = "list_created"
	ActivityListUpdated            ActivityType = "list_updated"
	ActivityListArchived           ActivityType = "list_archived"
	ActivityBoardCreated           ActivityType = "board_created"
	ActivityBoardUpdated           ActivityType = "board_updated"
	ActivityBoardMemberAdded       ActivityType = "board_member_added"
	ActivityBoardMemberRemoved     ActivityType = "board_member_removed"
	ActivityMindMapUpdated         ActivityType = "mind_map_updated"
)

// Activity is an append-only audit entry produced by the backend.
type Activity struct {
	ID          string          `json:"id"`
	Type        ActivityType    `json:"type"`
	Author      *UserRef        `json:"author,omitempty"`
	CardID      string          `json:"card_id,omitempty"`
	BoardID     string          `json:"board_id,omitempty"`
	Description string          `json:"description"`
	Data        json.RawMessage `json:"data,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ValueChange is the old/new pair carried in an activity's data payload.
type ValueChange struct {
	Old *string `json:"old_value,omitempty"`
	New *string `json:"new_value,omitempty"`
}

// Change decodes the activity's data payload as a ValueChange. It returns
// false when the payload is absent or not an old/new pair.
func (a Activity) Change() (ValueChange, bool) {
	if len(a.Data) == 0 {
		return ValueChange{}, false
	}
	var vc ValueChange
	if err := json.Unmarshal(a.Data, &vc); err != nil {
		return ValueChange{}, false
	}
	if vc.Old == nil && vc.New == nil {
		return ValueChange{}, false
	}
	return vc, true
}
