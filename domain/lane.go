package domain

type Lane struct {
	ID      LaneID
	BoardID BoardID
	// UserID is the owning user, denormalized from the parent chain.
	UserID UserID
	Title  string

	Issues []*Issue
}

func NewLane(title string) *Lane {
	return &Lane{ID: NewLaneID(), Title: title}
}

func (l *Lane) Update(title string) { l.Title = title }

// AddIssue attaches an issue, back-filling its lane reference and owner.
func (l *Lane) AddIssue(i *Issue) {
	i.LaneID = l.ID
	i.UserID = l.UserID
	l.Issues = append(l.Issues, i)
}

func (l *Lane) setOwner(id UserID) {
	l.UserID = id
	for _, i := range l.Issues {
		i.UserID = id
	}
}
