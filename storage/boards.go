package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"

	"kanban-api/domain"
)

type boardRepo struct{ u *UnitOfWork }

func (r *boardRepo) ByID(ctx context.Context, id domain.BoardID) (*domain.Board, error) {
	b, err := scanBoard(r.u.tx.QueryRow(ctx,
		`SELECT id, project_id, user_id, title, created_at FROM boards WHERE id = $1`,
		id.String(),
	))
	if err != nil || b == nil {
		return nil, err
	}
	lanes, err := lanesByBoard(ctx, r.u, b.ID)
	if err != nil {
		return nil, err
	}
	b.Lanes = lanes
	return b, nil
}

func (r *boardRepo) ByProjectID(ctx context.Context, id domain.ProjectID) ([]*domain.Board, error) {
	return boardsByProject(ctx, r.u, id)
}

func (r *boardRepo) Insert(ctx context.Context, b *domain.Board) error {
	return insertBoardTree(ctx, r.u, b)
}

func (r *boardRepo) Update(ctx context.Context, b *domain.Board) error {
	r.u.stage(b)
	return r.u.exec(ctx,
		`UPDATE boards SET title = $2 WHERE id = $1`,
		b.ID.String(), b.Title,
	)
}

func boardsByProject(ctx context.Context, u *UnitOfWork, id domain.ProjectID) ([]*domain.Board, error) {
	rows, err := u.tx.Query(ctx,
		`SELECT id, project_id, user_id, title, created_at FROM boards WHERE project_id = $1 ORDER BY id`,
		id.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	boards := []*domain.Board{}
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

func insertBoardTree(ctx context.Context, u *UnitOfWork, b *domain.Board) error {
	u.stage(b)
	err := u.exec(ctx,
		`INSERT INTO boards (id, project_id, user_id, title, created_at) VALUES ($1, $2, $3, $4, $5)`,
		b.ID.String(), b.ProjectID.String(), b.UserID.String(), b.Title, b.CreatedAt,
	)
	if err != nil {
		return err
	}
	for _, l := range b.Lanes {
		if err := insertLaneTree(ctx, u, l); err != nil {
			return err
		}
	}
	return nil
}

func scanBoard(row pgx.Row) (*domain.Board, error) {
	var (
		rawID, rawProjectID, rawUserID, title string
		createdAt                             time.Time
	)
	if err := row.Scan(&rawID, &rawProjectID, &rawUserID, &title, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	id, err := domain.ParseBoardID(rawID)
	if err != nil {
		return nil, err
	}
	projectID, err := domain.ParseProjectID(rawProjectID)
	if err != nil {
		return nil, err
	}
	userID, err := domain.ParseUserID(rawUserID)
	if err != nil {
		return nil, err
	}
	return &domain.Board{
		ID:        id,
		ProjectID: projectID,
		UserID:    userID,
		Title:     title,
		CreatedAt: createdAt,
	}, nil
}
