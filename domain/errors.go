package domain

// ErrorKind classifies a domain failure. The HTTP layer maps kinds to status
// codes; handlers only ever deal in kinds.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindConflict
	KindUnauthorized
)

// Error is a typed domain failure. Handlers return these as values, never as
// panics, so every failure path stays explicit.
type Error struct {
	Kind   ErrorKind
	Code   string
	Detail string
}

func (e *Error) Error() string { return e.Detail }

var (
	ErrInvalidID = &Error{KindValidation, "EntityId.Invalid", "Invalid id!"}

	ErrUserNotFound       = &Error{KindNotFound, "User.NotFound", "User doesn't exist!"}
	ErrUsernameTaken      = &Error{KindConflict, "User.UsernameAlreadyExists", "Username already exists!"}
	ErrInvalidCredentials = &Error{KindUnauthorized, "User.InvalidCredentials", "Invalid credentials!"}

	ErrProjectNotFound = &Error{KindNotFound, "Project.NotFound", "Project doesn't exist!"}
	ErrBoardNotFound   = &Error{KindNotFound, "Board.NotFound", "Board doesn't exist!"}
	ErrLaneNotFound    = &Error{KindNotFound, "Lane.NotFound", "Lane doesn't exist!"}
	ErrIssueNotFound   = &Error{KindNotFound, "Issue.NotFound", "Issue doesn't exist!"}

	ErrDuplicateRequest = &Error{KindConflict, "Request.Duplicate", "Request with this idempotency key was already processed!"}
)
