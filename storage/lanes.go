package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"

	"kanban-api/domain"
)

type laneRepo struct{ u *UnitOfWork }

func (r *laneRepo) ByID(ctx context.Context, id domain.LaneID) (*domain.Lane, error) {
	l, err := scanLane(r.u.tx.QueryRow(ctx,
		`SELECT id, board_id, user_id, title FROM lanes WHERE id = $1`,
		id.String(),
	))
	if err != nil || l == nil {
		return nil, err
	}
	issues, err := issuesByLane(ctx, r.u, l.ID)
	if err != nil {
		return nil, err
	}
	l.Issues = issues
	return l, nil
}

func (r *laneRepo) ByBoardID(ctx context.Context, id domain.BoardID) ([]*domain.Lane, error) {
	return lanesByBoard(ctx, r.u, id)
}

func (r *laneRepo) Insert(ctx context.Context, l *domain.Lane) error {
	return insertLaneTree(ctx, r.u, l)
}

func (r *laneRepo) Update(ctx context.Context, l *domain.Lane) error {
	r.u.stage(l)
	return r.u.exec(ctx,
		`UPDATE lanes SET title = $2 WHERE id = $1`,
		l.ID.String(), l.Title,
	)
}

func lanesByBoard(ctx context.Context, u *UnitOfWork, id domain.BoardID) ([]*domain.Lane, error) {
	rows, err := u.tx.Query(ctx,
		`SELECT id, board_id, user_id, title FROM lanes WHERE board_id = $1 ORDER BY id`,
		id.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lanes := []*domain.Lane{}
	for rows.Next() {
		l, err := scanLane(rows)
		if err != nil {
			return nil, err
		}
		lanes = append(lanes, l)
	}
	return lanes, rows.Err()
}

func insertLaneTree(ctx context.Context, u *UnitOfWork, l *domain.Lane) error {
	u.stage(l)
	err := u.exec(ctx,
		`INSERT INTO lanes (id, board_id, user_id, title) VALUES ($1, $2, $3, $4)`,
		l.ID.String(), l.BoardID.String(), l.UserID.String(), l.Title,
	)
	if err != nil {
		return err
	}
	for _, i := range l.Issues {
		if err := insertIssue(ctx, u, i); err != nil {
			return err
		}
	}
	return nil
}

func scanLane(row pgx.Row) (*domain.Lane, error) {
	var rawID, rawBoardID, rawUserID, title string
	if err := row.Scan(&rawID, &rawBoardID, &rawUserID, &title); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	id, err := domain.ParseLaneID(rawID)
	if err != nil {
		return nil, err
	}
	boardID, err := domain.ParseBoardID(rawBoardID)
	if err != nil {
		return nil, err
	}
	userID, err := domain.ParseUserID(rawUserID)
	if err != nil {
		return nil, err
	}
	return &domain.Lane{
		ID:      id,
		BoardID: boardID,
		UserID:  userID,
		Title:   title,
	}, nil
}
