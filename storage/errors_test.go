package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"

	"kanban-api/domain"
)

func TestClassifyUsernameUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		ConstraintName: constraintUsersUsername,
	}
	if got := classify(pgErr); !errors.Is(got, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", got)
	}
	// Wrapped errors classify the same way.
	wrapped := fmt.Errorf("exec insert: %w", pgErr)
	if got := classify(wrapped); !errors.Is(got, domain.ErrUsernameTaken) {
		t.Fatalf("expected wrapped error to classify, got %v", got)
	}
}

func TestClassifyOtherUniqueViolationPassesThrough(t *testing.T) {
	pgErr := &pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		ConstraintName: "projects_pkey",
	}
	if got := classify(pgErr); got != error(pgErr) {
		t.Fatalf("expected error unchanged, got %v", got)
	}
}

func TestClassifyUnrelatedError(t *testing.T) {
	boom := errors.New("connection reset")
	if got := classify(boom); got != boom {
		t.Fatalf("expected error unchanged, got %v", got)
	}
	if got := classify(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
