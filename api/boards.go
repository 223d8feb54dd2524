package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"kanban-api/domain"
)

type upsertBoardRequest struct {
	Title string `json:"title"`
}

type boardResponse struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Title     string `json:"title"`
	CreatedAt string `json:"createdAt"`
}

type boardDetailResponse struct {
	boardResponse
	Lanes []laneResponse `json:"lanes"`
}

func newBoardResponse(b *domain.Board) boardResponse {
	return boardResponse{
		ID:        b.ID.String(),
		ProjectID: b.ProjectID.String(),
		Title:     b.Title,
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
	}
}

func newBoardDetailResponse(b *domain.Board) boardDetailResponse {
	lanes := make([]laneResponse, 0, len(b.Lanes))
	for _, l := range b.Lanes {
		lanes = append(lanes, newLaneResponse(l))
	}
	return boardDetailResponse{boardResponse: newBoardResponse(b), Lanes: lanes}
}

func createBoard(store domain.Store, auth Authenticator, deduper Deduper, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		m := observe(c, "POST /projects/:projectId/boards", logger)
		defer func() { m.Log(c.Response().Status, err) }()
		ctx := c.Request().Context()

		projectID, derr := domain.ParseProjectID(c.Param("projectId"))
		if derr != nil {
			m.SetErrorStage("validation")
			return domainProblem(c, domain.ErrInvalidID)
		}
		var req upsertBoardRequest
		if derr := decodeBody(c, &req); derr != nil {
			m.SetErrorStage("decode")
			return badRequestProblem(c, "invalid body")
		}
		fe := domain.FieldErrors{}
		fe.BoardTitle(req.Title)
		if fe.Any() {
			m.SetErrorStage("validation")
			return validationProblem(c, fe)
		}

		uow, uerr := store.Begin(ctx)
		if uerr != nil {
			m.SetErrorStage("storage")
			return internalProblem(c, uerr)
		}
		defer func() { _ = uow.Rollback(ctx) }()

		authStart := time.Now()
		user, uerr := currentUser(ctx, c, auth, uow)
		m.ObserveAuth(time.Since(authStart))
		if uerr != nil {
			m.SetErrorStage("storage")
			return internalProblem(c, uerr)
		}
		if user == nil {
			m.SetErrorStage("auth")
			return domainProblem(c, domain.ErrInvalidCredentials)
		}

		loadStart := time.Now()
		project, uerr := uow.Projects().ByID(ctx, projectID)
		m.ObserveLoad(time.Since(loadStart))
		if uerr != nil {
			m.SetErrorStage("storage")
			return internalProblem(c, uerr)
		}
		if project == nil {
			m.SetErrorStage("notfound")
			return domainProblem(c, domain.ErrProjectNotFound)
		}
		if !canEdit(user, project.UserID) {
			m.SetErrorStage("auth")
			return domainProblem(c, domain.ErrInvalidCredentials)
		}

		key, duplicate, uerr := reserveKey(ctx, c, deduper, user.ID.String())
		if uerr != nil {
			m.SetErrorStage("deduper")
			return internalProblem(c, uerr)
		}
		if duplicate {
			m.SetErrorStage("deduper")
			return domainProblem(c, domain.ErrDuplicateRequest)
		}

		board := domain.NewBoard(req.Title)
		project.AddBoard(board)
		if uerr := uow.Boards().Insert(ctx, board); uerr != nil {
			releaseKey(deduper, user.ID.String(), key, logger)
			m.SetErrorStage("storage")
			return storageProblem(c, uerr)
		}

		saveStart := time.Now()
		_, uerr = uow.Save(ctx)
		m.ObserveSave(time.Since(saveStart))
		if uerr != nil {
			releaseKey(deduper, user.ID.String(), key, logger)
			m.SetErrorStage("save")
			return storageProblem(c, uerr)
		}

		c.Response().Header().Set(echo.HeaderLocation, "/boards/"+board.ID.String())
		encodeStart := time.Now()
		err = c.JSON(http.StatusCreated, newBoardResponse(board))
		m.ObserveEncode(time.Since(encodeStart))
		return err
	}
}

func updateBoard(store domain.Store, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		m := observe(c, "PUT /boards/:boardId", logger)
		defer func() { m.Log(c.Response().Status, err) }()
		ctx := c.Request().Context()

		id, derr := domain.ParseBoardID(c.Param("boardId"))
		if derr != nil {
			m.SetErrorStage("validation")
			return domainProblem(c, domain.ErrInvalidID)
		}
		var req upsertBoardRequest
		if derr := decodeBody(c, &req); derr != nil {
			m.SetErrorStage("decode")
			return badRequestProblem(c, "invalid body")
		}
		fe := domain.FieldErrors{}
		fe.BoardTitle(req.Title)
		if fe.Any() {
			m.SetErrorStage("validation")
			return validationProblem(c, fe)
		}

		uow, uerr := store.Begin(ctx)
		if uerr != nil {
			m.SetErrorStage("storage")
			return internalProblem(c, uerr)
		}
		defer func() { _ = uow.Rollback(ctx) }()

		authStart := time.Now()
		user, uerr := currentUser(ctx, c, auth, uow)
		m.ObserveAuth(time.Since(authStart))
		if uerr != nil {
			m.SetErrorStage("storage")
			return internalProblem(c, uerr)
		}
		if user == nil {
			m.SetErrorStage("auth")
			return domainProblem(c, domain.ErrInvalidCredentials)
		}

		loadStart := time.Now()
		board, uerr := uow.Boards().ByID(ctx, id)
		m.ObserveLoad(time.Since(loadStart))
		if uerr != nil {
			m.SetErrorStage("storage")
			return internalProblem(c, uerr)
		}
		if board == nil {
			m.SetErrorStage("notfound")
			return domainProblem(c, domain.ErrBoardNotFound)
		}
		if !canEdit(user, board.UserID) {
			m.SetErrorStage("auth")
			return domainProblem(c, domain.ErrInvalidCredentials)
		}

		board.Update(req.Title)
		if uerr := uow.Boards().Update(ctx, board); uerr != nil {
			m.SetErrorStage("storage")
			return storageProblem(c, uerr)
		}

		saveStart := time.Now()
		_, uerr = uow.Save(ctx)
		m.ObserveSave(time.Since(saveStart))
		if uerr != nil {
			m.SetErrorStage("save")
			return storageProblem(c, uerr)
		}

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, newBoardResponse(board))
		m.ObserveEncode(time.Since(encodeStart))
		return err
	}
}

func getBoard(store domain.Store, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		m := observe(c, "GET /boards/:boardId", logger)
		defer func() { m.Log(c.Response().Status, err) }()
		ctx := c.Request().Context()

		id, derr := domain.ParseBoardID(c.Param("boardId"))
		if derr != nil {
			m.SetErrorStage("validation")
			return domainProblem(c, domain.ErrInvalidID)
		}

		uow, uerr := store.Begin(ctx)
		if uerr != nil {
			m.SetErrorStage("storage")
			return internalProblem(c, uerr)
		}
		defer func() { _ = uow.Rollback(ctx) }()

		loadStart := time.Now()
		board, uerr := uow.Boards().ByID(ctx, id)
		m.ObserveLoad(time.Since(loadStart))
		if uerr != nil {
			m.SetErrorStage("storage")
			return internalProblem(c, uerr)
		}
		if board == nil {
			m.SetErrorStage("notfound")
			return domainProblem(c, domain.ErrBoardNotFound)
		}

		authStart := time.Now()
		user, uerr := currentUser(ctx, c, auth, uow)
		m.ObserveAuth(time.Since(authStart))
		if uerr != nil {
			m.SetErrorStage("storage")
			return internalProblem(c, uerr)
		}
		if !canView(user, board.UserID) {
			m.SetErrorStage("auth")
			return domainProblem(c, domain.ErrInvalidCredentials)
		}

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, newBoardDetailResponse(board))
		m.ObserveEncode(time.Since(encodeStart))
		return err
	}
}

func listBoards(store domain.Store, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		m := observe(c, "GET /projects/:projectId/boards", logger)
		defer func() { m.Log(c.Response().Status, err) }()
		ctx := c.Request().Context()

		projectID, derr := domain.ParseProjectID(c.Param("projectId"))
		if derr != nil {
			m.SetErrorStage("validation")
			return domainProblem(c, domain.ErrInvalidID)
		}

		uow, uerr := store.Begin(ctx)
		if uerr != nil {
			m.SetErrorStage("storage")
			return internalProblem(c, uerr)
		}
		defer func() { _ = uow.Rollback(ctx) }()

		loadStart := time.Now()
		project, uerr := uow.Projects().ByID(ctx, projectID)
		m.ObserveLoad(time.Since(loadStart))
		if uerr != nil {
			m.SetErrorStage("storage")
			return internalProblem(c, uerr)
		}
		if project == nil {
			m.SetErrorStage("notfound")
			return domainProblem(c, domain.ErrProjectNotFound)
		}

		authStart := time.Now()
		user, uerr := currentUser(ctx, c, auth, uow)
		m.ObserveAuth(time.Since(authStart))
		if uerr != nil {
			m.SetErrorStage("storage")
			return internalProblem(c, uerr)
		}
		if !canView(user, project.UserID) {
			m.SetErrorStage("auth")
			return domainProblem(c, domain.ErrInvalidCredentials)
		}

		out := make([]boardResponse, 0, len(project.Boards))
		for _, b := range project.Boards {
			out = append(out, newBoardResponse(b))
		}
		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, out)
		m.ObserveEncode(time.Since(encodeStart))
		return err
	}
}
