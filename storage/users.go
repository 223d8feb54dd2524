package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"

	"kanban-api/domain"
)

type userRepo struct{ u *UnitOfWork }

func (r *userRepo) ByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	return scanUser(r.u.tx.QueryRow(ctx,
		`SELECT id, username, hashed_password, created_at FROM users WHERE id = $1`,
		id.String(),
	))
}

func (r *userRepo) ByUsername(ctx context.Context, username string) (*domain.User, error) {
	return scanUser(r.u.tx.QueryRow(ctx,
		`SELECT id, username, hashed_password, created_at FROM users WHERE username = $1`,
		username,
	))
}

func (r *userRepo) Insert(ctx context.Context, u *domain.User) error {
	err := r.u.exec(ctx,
		`INSERT INTO users (id, username, hashed_password, created_at) VALUES ($1, $2, $3, $4)`,
		u.ID.String(), u.Username, u.HashedPassword, u.CreatedAt,
	)
	if err != nil {
		return err
	}
	for _, p := range u.Projects {
		if err := insertProjectTree(ctx, r.u, p); err != nil {
			return err
		}
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		rawID, username, hashed string
		createdAt               time.Time
	)
	if err := row.Scan(&rawID, &username, &hashed, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	id, err := domain.ParseUserID(rawID)
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:             id,
		Username:       username,
		HashedPassword: hashed,
		CreatedAt:      createdAt,
	}, nil
}
