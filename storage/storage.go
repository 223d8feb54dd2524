package storage

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"kanban-api/domain"
)

// Store provides access to the underlying Postgres database and holds the
// event subscriber registry shared by every unit of work.
type Store struct {
	pool *pgxpool.Pool

	mu          sync.RWMutex
	subscribers map[string][]domain.EventHandler
}

var _ domain.Store = (*Store)(nil)

// Open connects a pool to the given database URL and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	cfg.MaxConnLifetime = time.Hour
	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool, subscribers: map[string][]domain.EventHandler{}}, nil
}

// Subscribe registers a handler for the named event. Handlers run
// concurrently during Save; any handler error aborts the commit.
func (s *Store) Subscribe(name string, h domain.EventHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers[name] = append(s.subscribers[name], h)
}

func (s *Store) handlersFor(name string) []domain.EventHandler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subscribers[name]
}

// Begin opens a transaction-scoped unit of work. The caller must finish it
// with Save or Rollback on every exit path.
func (s *Store) Begin(ctx context.Context) (domain.UnitOfWork, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &UnitOfWork{tx: tx, handlersFor: s.handlersFor}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() {
	s.pool.Close()
}
