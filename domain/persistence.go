package domain

import "context"

// Store opens unit-of-work transactions against the backing database.
type Store interface {
	Begin(ctx context.Context) (UnitOfWork, error)
	Ping(ctx context.Context) error
}

// UnitOfWork scopes one request's mutations to a single transaction. Save is
// the only commit point: it dispatches pending domain events of every staged
// entity, then commits atomically and returns the number of rows affected.
// Rollback is safe to call after Save and after a failed Save, so callers can
// defer it on every path.
type UnitOfWork interface {
	Users() UserRepository
	Projects() ProjectRepository
	Boards() BoardRepository
	Lanes() LaneRepository
	Issues() IssueRepository

	Save(ctx context.Context) (int64, error)
	Rollback(ctx context.Context) error
}

// Lookup methods return (nil, nil) when no entity matches; absence is not an
// error at this layer.

type UserRepository interface {
	ByID(ctx context.Context, id UserID) (*User, error)
	ByUsername(ctx context.Context, username string) (*User, error)
	// Insert stages the user and every seeded project under it.
	Insert(ctx context.Context, u *User) error
}

type ProjectRepository interface {
	// ByID loads the project with its boards (one level deep).
	ByID(ctx context.Context, id ProjectID) (*Project, error)
	ByUserID(ctx context.Context, id UserID) ([]*Project, error)
	// Insert stages the project and its whole child tree.
	Insert(ctx context.Context, p *Project) error
	Update(ctx context.Context, p *Project) error
}

type BoardRepository interface {
	// ByID loads the board with its lanes (one level deep).
	ByID(ctx context.Context, id BoardID) (*Board, error)
	ByProjectID(ctx context.Context, id ProjectID) ([]*Board, error)
	Insert(ctx context.Context, b *Board) error
	Update(ctx context.Context, b *Board) error
}

type LaneRepository interface {
	// ByID loads the lane with its issues (one level deep).
	ByID(ctx context.Context, id LaneID) (*Lane, error)
	ByBoardID(ctx context.Context, id BoardID) ([]*Lane, error)
	Insert(ctx context.Context, l *Lane) error
	Update(ctx context.Context, l *Lane) error
}

type IssueRepository interface {
	ByID(ctx context.Context, id IssueID) (*Issue, error)
	ByLaneID(ctx context.Context, id LaneID) ([]*Issue, error)
	Insert(ctx context.Context, i *Issue) error
	Update(ctx context.Context, i *Issue) error
}
