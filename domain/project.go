package domain

import "time"

// DefaultLaneTitles are the lanes seeded into every new project's default
// board, in this order.
var DefaultLaneTitles = []string{"Backlog", "Todo", "Doing", "Done"}

const defaultBoardTitle = "Default board"

type Project struct {
	ID          ProjectID
	UserID      UserID
	Title       string
	Description string
	CreatedAt   time.Time

	Boards []*Board

	events []Event
}

// NewProject creates a project pre-populated with a default board and its
// four default lanes, and records a ProjectCreated event. Ownership is
// stamped when the project is attached to a user.
func NewProject(title, description string) *Project {
	p := &Project{
		ID:          NewProjectID(),
		Title:       title,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	b := NewBoard(defaultBoardTitle)
	for _, lane := range DefaultLaneTitles {
		b.AddLane(NewLane(lane))
	}
	p.AddBoard(b)
	p.record(ProjectCreated{Project: p})
	return p
}

// Update changes title and description. The id and creation timestamp never
// change.
func (p *Project) Update(title, description string) {
	p.Title = title
	p.Description = description
}

// AddBoard attaches a board, back-filling its project reference and owner.
func (p *Project) AddBoard(b *Board) {
	b.ProjectID = p.ID
	b.setOwner(p.UserID)
	p.Boards = append(p.Boards, b)
}

func (p *Project) setOwner(id UserID) {
	p.UserID = id
	for _, b := range p.Boards {
		b.setOwner(id)
	}
}

func (p *Project) record(ev Event) { p.events = append(p.events, ev) }

func (p *Project) Events() []Event { return p.events }
func (p *Project) ClearEvents()    { p.events = nil }
