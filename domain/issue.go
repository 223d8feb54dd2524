package domain

import "time"

// IssuePriority is the urgency of an issue, serialized as a lowercase word.
type IssuePriority string

const (
	PriorityLow      IssuePriority = "low"
	PriorityMedium   IssuePriority = "medium"
	PriorityHigh     IssuePriority = "high"
	PriorityCritical IssuePriority = "critical"
)

// ParseIssuePriority reports whether s names a known priority.
func ParseIssuePriority(s string) (IssuePriority, bool) {
	switch IssuePriority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return IssuePriority(s), true
	}
	return "", false
}

type Issue struct {
	ID     IssueID
	LaneID LaneID
	// UserID is the owning user, denormalized from the parent chain.
	UserID      UserID
	Title       string
	Description string
	Priority    IssuePriority
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// NewIssue creates an issue with priority low.
func NewIssue(title, description string) *Issue {
	return &Issue{
		ID:          NewIssueID(),
		Title:       title,
		Description: description,
		Priority:    PriorityLow,
		CreatedAt:   time.Now().UTC(),
	}
}

// Update changes the mutable fields and stamps the update time. Issue is the
// only entity that tracks updates.
func (i *Issue) Update(title, description string, priority IssuePriority) {
	i.Title = title
	i.Description = description
	i.Priority = priority
	now := time.Now().UTC()
	i.UpdatedAt = &now
}
