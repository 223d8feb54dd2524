package storage

import "context"

// Ids are stored as their canonical text form; UUIDv7 text sorts by creation
// time, so ORDER BY id reproduces insertion order for every child list.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id text PRIMARY KEY,
		username text NOT NULL UNIQUE,
		hashed_password text NOT NULL,
		created_at timestamptz NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id text PRIMARY KEY,
		user_id text NOT NULL REFERENCES users (id),
		title text NOT NULL,
		description text NOT NULL,
		created_at timestamptz NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS boards (
		id text PRIMARY KEY,
		project_id text NOT NULL REFERENCES projects (id),
		user_id text NOT NULL REFERENCES users (id),
		title text NOT NULL,
		created_at timestamptz NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS lanes (
		id text PRIMARY KEY,
		board_id text NOT NULL REFERENCES boards (id),
		user_id text NOT NULL REFERENCES users (id),
		title text NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS issues (
		id text PRIMARY KEY,
		lane_id text NOT NULL REFERENCES lanes (id),
		user_id text NOT NULL REFERENCES users (id),
		title text NOT NULL,
		description text NOT NULL,
		priority text NOT NULL,
		created_at timestamptz NOT NULL,
		updated_at timestamptz
	)`,
	`CREATE INDEX IF NOT EXISTS projects_user_id_idx ON projects (user_id)`,
	`CREATE INDEX IF NOT EXISTS boards_project_id_idx ON boards (project_id)`,
	`CREATE INDEX IF NOT EXISTS lanes_board_id_idx ON lanes (board_id)`,
	`CREATE INDEX IF NOT EXISTS issues_lane_id_idx ON issues (lane_id)`,
}

// EnsureSchema creates the tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
