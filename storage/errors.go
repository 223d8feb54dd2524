package storage

import (
	"errors"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"

	"kanban-api/domain"
)

// classify maps database failures to domain errors where the mapping is
// unambiguous. The only application-level unique constraint is the username.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		if pgErr.ConstraintName == constraintUsersUsername {
			return domain.ErrUsernameTaken
		}
	}
	return err
}

const constraintUsersUsername = "users_username_key"
