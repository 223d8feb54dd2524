package domain

import "time"

type Board struct {
	ID        BoardID
	ProjectID ProjectID
	// UserID is the owning user, denormalized from the parent project so
	// authorization never needs to walk the parent chain.
	UserID    UserID
	Title     string
	CreatedAt time.Time

	Lanes []*Lane
}

// NewBoard creates a board with no lanes. Only project creation seeds lanes.
func NewBoard(title string) *Board {
	return &Board{
		ID:        NewBoardID(),
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
}

func (b *Board) Update(title string) { b.Title = title }

// AddLane attaches a lane, back-filling its board reference and owner.
func (b *Board) AddLane(l *Lane) {
	l.BoardID = b.ID
	l.setOwner(b.UserID)
	b.Lanes = append(b.Lanes, l)
}

func (b *Board) setOwner(id UserID) {
	b.UserID = id
	for _, l := range b.Lanes {
		l.setOwner(id)
	}
}
