package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"kanban-api/domain"
)

// memStore is an in-memory domain.Store. Mutations apply immediately; Save
// counts them and dispatches recorded events, Rollback is a no-op. That is
// enough to drive the handlers through every success and failure branch
// without a database.

type memStore struct {
	users    map[domain.UserID]*domain.User
	projects map[domain.ProjectID]*domain.Project
	boards   map[domain.BoardID]*domain.Board
	lanes    map[domain.LaneID]*domain.Lane
	issues   map[domain.IssueID]*domain.Issue

	handlers map[string][]domain.EventHandler
	beginErr error
	saveErr  error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[domain.UserID]*domain.User{},
		projects: map[domain.ProjectID]*domain.Project{},
		boards:   map[domain.BoardID]*domain.Board{},
		lanes:    map[domain.LaneID]*domain.Lane{},
		issues:   map[domain.IssueID]*domain.Issue{},
		handlers: map[string][]domain.EventHandler{},
	}
}

func (s *memStore) Subscribe(name string, h domain.EventHandler) {
	s.handlers[name] = append(s.handlers[name], h)
}

func (s *memStore) Begin(ctx context.Context) (domain.UnitOfWork, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	return &memUOW{store: s}, nil
}

func (s *memStore) Ping(ctx context.Context) error { return nil }

type memUOW struct {
	store  *memStore
	staged []domain.EventSource
	rows   int64
}

func (u *memUOW) Users() domain.UserRepository       { return memUsers{u} }
func (u *memUOW) Projects() domain.ProjectRepository { return memProjects{u} }
func (u *memUOW) Boards() domain.BoardRepository     { return memBoards{u} }
func (u *memUOW) Lanes() domain.LaneRepository       { return memLanes{u} }
func (u *memUOW) Issues() domain.IssueRepository     { return memIssues{u} }

func (u *memUOW) Save(ctx context.Context) (int64, error) {
	if u.store.saveErr != nil {
		return 0, u.store.saveErr
	}
	for _, src := range u.staged {
		events := src.Events()
		src.ClearEvents()
		for _, ev := range events {
			for _, h := range u.store.handlers[ev.EventName()] {
				if err := h(ctx, ev); err != nil {
					return 0, err
				}
			}
		}
	}
	return u.rows, nil
}

func (u *memUOW) Rollback(ctx context.Context) error { return nil }

func (u *memUOW) putProjectTree(p *domain.Project) {
	u.store.projects[p.ID] = p
	u.staged = append(u.staged, p)
	u.rows++
	for _, b := range p.Boards {
		u.putBoardTree(b)
	}
}

func (u *memUOW) putBoardTree(b *domain.Board) {
	u.store.boards[b.ID] = b
	u.rows++
	for _, l := range b.Lanes {
		u.putLaneTree(l)
	}
}

func (u *memUOW) putLaneTree(l *domain.Lane) {
	u.store.lanes[l.ID] = l
	u.rows++
	for _, i := range l.Issues {
		u.store.issues[i.ID] = i
		u.rows++
	}
}

type memUsers struct{ u *memUOW }

func (r memUsers) ByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	return r.u.store.users[id], nil
}

func (r memUsers) ByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range r.u.store.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r memUsers) Insert(ctx context.Context, user *domain.User) error {
	r.u.store.users[user.ID] = user
	r.u.rows++
	for _, p := range user.Projects {
		r.u.putProjectTree(p)
	}
	return nil
}

type memProjects struct{ u *memUOW }

func (r memProjects) ByID(ctx context.Context, id domain.ProjectID) (*domain.Project, error) {
	return r.u.store.projects[id], nil
}

func (r memProjects) ByUserID(ctx context.Context, id domain.UserID) ([]*domain.Project, error) {
	var out []*domain.Project
	if u := r.u.store.users[id]; u != nil {
		out = append(out, u.Projects...)
	}
	return out, nil
}

func (r memProjects) Insert(ctx context.Context, p *domain.Project) error {
	r.u.putProjectTree(p)
	return nil
}

func (r memProjects) Update(ctx context.Context, p *domain.Project) error {
	r.u.rows++
	return nil
}

type memBoards struct{ u *memUOW }

func (r memBoards) ByID(ctx context.Context, id domain.BoardID) (*domain.Board, error) {
	return r.u.store.boards[id], nil
}

func (r memBoards) ByProjectID(ctx context.Context, id domain.ProjectID) ([]*domain.Board, error) {
	if p := r.u.store.projects[id]; p != nil {
		return p.Boards, nil
	}
	return nil, nil
}

func (r memBoards) Insert(ctx context.Context, b *domain.Board) error {
	r.u.putBoardTree(b)
	return nil
}

func (r memBoards) Update(ctx context.Context, b *domain.Board) error {
	r.u.rows++
	return nil
}

type memLanes struct{ u *memUOW }

func (r memLanes) ByID(ctx context.Context, id domain.LaneID) (*domain.Lane, error) {
	return r.u.store.lanes[id], nil
}

func (r memLanes) ByBoardID(ctx context.Context, id domain.BoardID) ([]*domain.Lane, error) {
	if b := r.u.store.boards[id]; b != nil {
		return b.Lanes, nil
	}
	return nil, nil
}

func (r memLanes) Insert(ctx context.Context, l *domain.Lane) error {
	r.u.putLaneTree(l)
	return nil
}

func (r memLanes) Update(ctx context.Context, l *domain.Lane) error {
	r.u.rows++
	return nil
}

type memIssues struct{ u *memUOW }

func (r memIssues) ByID(ctx context.Context, id domain.IssueID) (*domain.Issue, error) {
	return r.u.store.issues[id], nil
}

func (r memIssues) ByLaneID(ctx context.Context, id domain.LaneID) ([]*domain.Issue, error) {
	if l := r.u.store.lanes[id]; l != nil {
		return l.Issues, nil
	}
	return nil, nil
}

func (r memIssues) Insert(ctx context.Context, i *domain.Issue) error {
	r.u.store.issues[i.ID] = i
	r.u.rows++
	return nil
}

func (r memIssues) Update(ctx context.Context, i *domain.Issue) error {
	r.u.rows++
	return nil
}

func testAuth(t *testing.T) *Auth {
	t.Helper()
	return NewAuth([]byte("0123456789abcdef0123456789abcdef"), time.Hour, "kanban-api")
}

// seedUser registers a user straight into the store, seeded project included.
func seedUser(t *testing.T, store *memStore, username string) *domain.User {
	t.Helper()
	hashed, err := hashPassword("secret-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := domain.NewUser(username, hashed)
	uow, _ := store.Begin(context.Background())
	if err := uow.Users().Insert(context.Background(), user); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := uow.Save(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}
	return user
}

func bearer(t *testing.T, auth *Auth, user *domain.User) string {
	t.Helper()
	token, err := auth.IssueToken(user.ID.String(), user.Username)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + token
}

func newTestContext(t *testing.T, method, target, body, authHeader string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func testLogger() *log.Logger {
	l := log.New()
	l.SetLevel(log.PanicLevel)
	return l
}
