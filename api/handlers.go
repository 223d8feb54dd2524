package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"kanban-api/domain"
)

const requestBodyMaxSize = 64 * 1024 // 64 KiB

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store domain.Store, auth Authenticator, deduper Deduper, logger *log.Logger) {
	e.GET("/healthz", healthz(store))

	e.POST("/users", registerUser(store, logger))
	e.POST("/login", loginUser(store, auth, logger))
	e.GET("/users/:userId", getUser(store, auth, logger))

	e.POST("/projects", createProject(store, auth, deduper, logger))
	e.PUT("/projects/:projectId", updateProject(store, auth, logger))
	e.GET("/projects/:projectId", getProject(store, auth, logger))
	e.GET("/projects", listProjects(store, auth, logger))

	e.POST("/projects/:projectId/boards", createBoard(store, auth, deduper, logger))
	e.PUT("/boards/:boardId", updateBoard(store, auth, logger))
	e.GET("/boards/:boardId", getBoard(store, auth, logger))
	e.GET("/projects/:projectId/boards", listBoards(store, auth, logger))

	e.POST("/boards/:boardId/lanes", createLane(store, auth, deduper, logger))
	e.PUT("/lanes/:laneId", updateLane(store, auth, logger))
	e.GET("/lanes/:laneId", getLane(store, auth, logger))
	e.GET("/boards/:boardId/lanes", listLanes(store, auth, logger))

	e.POST("/lanes/:laneId/issues", createIssue(store, auth, deduper, logger))
	e.PUT("/issues/:issueId", updateIssue(store, auth, logger))
	e.GET("/issues/:issueId", getIssue(store, auth, logger))
	e.GET("/lanes/:laneId/issues", listIssues(store, auth, logger))
}

func healthz(store domain.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := store.Ping(c.Request().Context()); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	}
}

// observe starts the request span and rebinds it onto the request context.
func observe(c echo.Context, route string, logger *log.Logger) *requestMetrics {
	m, spanCtx := newRequestMetrics(c.Request().Context(), route, logger)
	c.SetRequest(c.Request().WithContext(spanCtx))
	return m
}

func decodeBody(c echo.Context, dst any) error {
	lr := io.LimitReader(c.Request().Body, requestBodyMaxSize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// currentUser resolves the caller from the Authorization header and loads the
// user aggregate. It returns (nil, nil) for any authentication failure; only
// storage failures produce an error.
func currentUser(ctx context.Context, c echo.Context, auth Authenticator, uow domain.UnitOfWork) (*domain.User, error) {
	sub, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
	if err != nil {
		return nil, nil
	}
	id, err := domain.ParseUserID(sub)
	if err != nil {
		return nil, nil
	}
	return uow.Users().ByID(ctx, id)
}

// storageProblem renders a persistence failure, keeping classified domain
// errors (such as Conflict from a unique violation) distinct from internal
// ones.
func storageProblem(c echo.Context, err error) error {
	var derr *domain.Error
	if errors.As(err, &derr) {
		return domainProblem(c, derr)
	}
	return internalProblem(c, err)
}
