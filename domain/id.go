package domain

import "github.com/google/uuid"

// Entity identifiers are UUIDv7 values, so they are unique and sort by
// creation time. Each entity gets its own type to keep ids of different
// entities from being mixed up.

type UserID struct{ value uuid.UUID }
type ProjectID struct{ value uuid.UUID }
type BoardID struct{ value uuid.UUID }
type LaneID struct{ value uuid.UUID }
type IssueID struct{ value uuid.UUID }

// NewUserID returns a fresh, time-sortable user id.
func NewUserID() UserID { return UserID{newIDValue()} }

func NewProjectID() ProjectID { return ProjectID{newIDValue()} }
func NewBoardID() BoardID     { return BoardID{newIDValue()} }
func NewLaneID() LaneID       { return LaneID{newIDValue()} }
func NewIssueID() IssueID     { return IssueID{newIDValue()} }

// ParseUserID parses a textual id. Malformed input yields ErrInvalidID, never
// a panic, since parsing sits on the request path of every lookup.
func ParseUserID(s string) (UserID, error) {
	v, err := parseIDValue(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID{v}, nil
}

func ParseProjectID(s string) (ProjectID, error) {
	v, err := parseIDValue(s)
	if err != nil {
		return ProjectID{}, err
	}
	return ProjectID{v}, nil
}

func ParseBoardID(s string) (BoardID, error) {
	v, err := parseIDValue(s)
	if err != nil {
		return BoardID{}, err
	}
	return BoardID{v}, nil
}

func ParseLaneID(s string) (LaneID, error) {
	v, err := parseIDValue(s)
	if err != nil {
		return LaneID{}, err
	}
	return LaneID{v}, nil
}

func ParseIssueID(s string) (IssueID, error) {
	v, err := parseIDValue(s)
	if err != nil {
		return IssueID{}, err
	}
	return IssueID{v}, nil
}

func (id UserID) String() string    { return id.value.String() }
func (id ProjectID) String() string { return id.value.String() }
func (id BoardID) String() string   { return id.value.String() }
func (id LaneID) String() string    { return id.value.String() }
func (id IssueID) String() string   { return id.value.String() }

func (id UserID) IsZero() bool    { return id.value == uuid.Nil }
func (id ProjectID) IsZero() bool { return id.value == uuid.Nil }
func (id BoardID) IsZero() bool   { return id.value == uuid.Nil }
func (id LaneID) IsZero() bool    { return id.value == uuid.Nil }
func (id IssueID) IsZero() bool   { return id.value == uuid.Nil }

func newIDValue() uuid.UUID {
	v, err := uuid.NewV7()
	if err != nil {
		// Entropy exhaustion. A v4 id stays unique, it just loses the
		// time ordering.
		return uuid.New()
	}
	return v
}

func parseIDValue(s string) (uuid.UUID, error) {
	v, err := uuid.Parse(s)
	if err != nil || v == uuid.Nil {
		return uuid.Nil, ErrInvalidID
	}
	return v, nil
}
