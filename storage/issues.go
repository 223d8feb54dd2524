package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"

	"kanban-api/domain"
)

type issueRepo struct{ u *UnitOfWork }

func (r *issueRepo) ByID(ctx context.Context, id domain.IssueID) (*domain.Issue, error) {
	return scanIssue(r.u.tx.QueryRow(ctx,
		`SELECT id, lane_id, user_id, title, description, priority, created_at, updated_at
		   FROM issues WHERE id = $1`,
		id.String(),
	))
}

func (r *issueRepo) ByLaneID(ctx context.Context, id domain.LaneID) ([]*domain.Issue, error) {
	return issuesByLane(ctx, r.u, id)
}

func (r *issueRepo) Insert(ctx context.Context, i *domain.Issue) error {
	return insertIssue(ctx, r.u, i)
}

func (r *issueRepo) Update(ctx context.Context, i *domain.Issue) error {
	r.u.stage(i)
	return r.u.exec(ctx,
		`UPDATE issues SET title = $2, description = $3, priority = $4, updated_at = $5 WHERE id = $1`,
		i.ID.String(), i.Title, i.Description, string(i.Priority), i.UpdatedAt,
	)
}

func issuesByLane(ctx context.Context, u *UnitOfWork, id domain.LaneID) ([]*domain.Issue, error) {
	rows, err := u.tx.Query(ctx,
		`SELECT id, lane_id, user_id, title, description, priority, created_at, updated_at
		   FROM issues WHERE lane_id = $1 ORDER BY id`,
		id.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	issues := []*domain.Issue{}
	for rows.Next() {
		i, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, i)
	}
	return issues, rows.Err()
}

func insertIssue(ctx context.Context, u *UnitOfWork, i *domain.Issue) error {
	u.stage(i)
	return u.exec(ctx,
		`INSERT INTO issues (id, lane_id, user_id, title, description, priority, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		i.ID.String(), i.LaneID.String(), i.UserID.String(),
		i.Title, i.Description, string(i.Priority), i.CreatedAt, i.UpdatedAt,
	)
}

func scanIssue(row pgx.Row) (*domain.Issue, error) {
	var (
		rawID, rawLaneID, rawUserID, title, description, priority string
		createdAt                                                 time.Time
		updatedAt                                                 *time.Time
	)
	if err := row.Scan(&rawID, &rawLaneID, &rawUserID, &title, &description, &priority, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	id, err := domain.ParseIssueID(rawID)
	if err != nil {
		return nil, err
	}
	laneID, err := domain.ParseLaneID(rawLaneID)
	if err != nil {
		return nil, err
	}
	userID, err := domain.ParseUserID(rawUserID)
	if err != nil {
		return nil, err
	}
	return &domain.Issue{
		ID:          id,
		LaneID:      laneID,
		UserID:      userID,
		Title:       title,
		Description: description,
		Priority:    domain.IssuePriority(priority),
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}
