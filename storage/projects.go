package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"

	"kanban-api/domain"
)

type projectRepo struct{ u *UnitOfWork }

func (r *projectRepo) ByID(ctx context.Context, id domain.ProjectID) (*domain.Project, error) {
	p, err := scanProject(r.u.tx.QueryRow(ctx,
		`SELECT id, user_id, title, description, created_at FROM projects WHERE id = $1`,
		id.String(),
	))
	if err != nil || p == nil {
		return nil, err
	}
	boards, err := boardsByProject(ctx, r.u, p.ID)
	if err != nil {
		return nil, err
	}
	p.Boards = boards
	return p, nil
}

func (r *projectRepo) ByUserID(ctx context.Context, id domain.UserID) ([]*domain.Project, error) {
	rows, err := r.u.tx.Query(ctx,
		`SELECT id, user_id, title, description, created_at FROM projects WHERE user_id = $1 ORDER BY id`,
		id.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []*domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *projectRepo) Insert(ctx context.Context, p *domain.Project) error {
	return insertProjectTree(ctx, r.u, p)
}

func (r *projectRepo) Update(ctx context.Context, p *domain.Project) error {
	r.u.stage(p)
	return r.u.exec(ctx,
		`UPDATE projects SET title = $2, description = $3 WHERE id = $1`,
		p.ID.String(), p.Title, p.Description,
	)
}

// insertProjectTree stages the project row and cascades into every board,
// lane and issue attached to it. Registration and project creation both land
// here.
func insertProjectTree(ctx context.Context, u *UnitOfWork, p *domain.Project) error {
	u.stage(p)
	err := u.exec(ctx,
		`INSERT INTO projects (id, user_id, title, description, created_at) VALUES ($1, $2, $3, $4, $5)`,
		p.ID.String(), p.UserID.String(), p.Title, p.Description, p.CreatedAt,
	)
	if err != nil {
		return err
	}
	for _, b := range p.Boards {
		if err := insertBoardTree(ctx, u, b); err != nil {
			return err
		}
	}
	return nil
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var (
		rawID, rawUserID, title, description string
		createdAt                            time.Time
	)
	if err := row.Scan(&rawID, &rawUserID, &title, &description, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	id, err := domain.ParseProjectID(rawID)
	if err != nil {
		return nil, err
	}
	userID, err := domain.ParseUserID(rawUserID)
	if err != nil {
		return nil, err
	}
	return &domain.Project{
		ID:          id,
		UserID:      userID,
		Title:       title,
		Description: description,
		CreatedAt:   createdAt,
	}, nil
}
