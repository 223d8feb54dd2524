package storage

import (
	"context"
	"sync"

	"kanban-api/domain"
)

// UnitOfWork batches one request's entity mutations into a single
// transaction. Repositories execute their statements against the open
// transaction immediately; nothing is visible to other sessions until Save
// commits.
type UnitOfWork struct {
	tx          tx
	handlersFor func(name string) []domain.EventHandler

	staged []domain.EventSource
	rows   int64
	done   bool
}

var _ domain.UnitOfWork = (*UnitOfWork)(nil)

func (u *UnitOfWork) Users() domain.UserRepository       { return &userRepo{u} }
func (u *UnitOfWork) Projects() domain.ProjectRepository { return &projectRepo{u} }
func (u *UnitOfWork) Boards() domain.BoardRepository     { return &boardRepo{u} }
func (u *UnitOfWork) Lanes() domain.LaneRepository       { return &laneRepo{u} }
func (u *UnitOfWork) Issues() domain.IssueRepository     { return &issueRepo{u} }

// Save dispatches the pending domain events of every staged entity, waits
// for all handlers, and then commits. A handler error aborts the commit, so
// event delivery and the durable write succeed or fail together.
func (u *UnitOfWork) Save(ctx context.Context) (int64, error) {
	if err := u.dispatchEvents(ctx); err != nil {
		_ = u.tx.Rollback(ctx)
		u.done = true
		return 0, err
	}
	if err := u.tx.Commit(ctx); err != nil {
		u.done = true
		return 0, classify(err)
	}
	u.done = true
	return u.rows, nil
}

// Rollback releases the transaction. It is a no-op once Save has finished,
// so callers can defer it unconditionally.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	return u.tx.Rollback(ctx)
}

// stage remembers entities whose events must be dispatched at Save.
func (u *UnitOfWork) stage(entity interface{}) {
	if src, ok := entity.(domain.EventSource); ok {
		u.staged = append(u.staged, src)
	}
}

func (u *UnitOfWork) exec(ctx context.Context, sql string, args ...interface{}) error {
	tag, err := u.tx.Exec(ctx, sql, args...)
	if err != nil {
		return classify(err)
	}
	u.rows += tag.RowsAffected()
	return nil
}

func (u *UnitOfWork) dispatchEvents(ctx context.Context) error {
	var events []domain.Event
	for _, src := range u.staged {
		events = append(events, src.Events()...)
		src.ClearEvents()
	}
	u.staged = nil
	if len(events) == 0 || u.handlersFor == nil {
		return nil
	}

	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error
	for _, ev := range events {
		for _, h := range u.handlersFor(ev.EventName()) {
			wg.Add(1)
			go func(h domain.EventHandler, ev domain.Event) {
				defer wg.Done()
				if err := h(ctx, ev); err != nil {
					once.Do(func() { firstErr = err })
				}
			}(h, ev)
		}
	}
	wg.Wait()
	return firstErr
}
