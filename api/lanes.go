package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"kanban-api/domain"
)

type upsertLaneRequest struct {
	Title string `json:"title"`
}

type laneResponse struct {
	ID      string `json:"id"`
	BoardID string `json:"boardId"`
	Title   string `json:"title"`
}

type laneDetailResponse struct {
	laneResponse
	Issues []issueResponse `json:"issues"`
}

func newLaneResponse(l *domain.Lane) laneResponse {
	return laneResponse{
		ID:      l.ID.String(),
		BoardID: l.BoardID.String(),
		Title:   l.Title,
	}
}

func newLaneDetailResponse(l *domain.Lane) laneDetailResponse {
	issues := make([]issueResponse, 0, len(l.Issues))
	for _, i := range l.Issues {
		issues = append(issues, newIssueResponse(i))
	}
	return laneDetailResponse{laneResponse: newLaneResponse(l), Issues: issues}
}

func createLane(store domain.Store, auth Authenticator, deduper Deduper, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		m := observe(c, "POST /boards/:boardId/lanes", logger)
		defer func() { m.Log(c.Response().Status, err) }()
		ctx := c.Request().Context()

		boardID, derr := domain.ParseBoardID(c.Param("boardId"))
		if derr != nil {
			m.SetErrorStage("validation")
			return domainProblem(c, domain.ErrInvalidID)
		}
		var req upsertLaneRequest
		if derr := decodeBody(c, &req); derr != nil {
			m.SetErrorStage("decode")
			return badRequestProblem(c, "invalid body")
		}
		fe := domain.FieldErrors{}
		fe.LaneTitle(req.Title)
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
		board, uerr := uow.Boards().ByID(ctx, boardID)
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

		key, duplicate, uerr := reserveKey(ctx, c, deduper, user.ID.String())
		if uerr != nil {
			m.SetErrorStage("deduper")
			return internalProblem(c, uerr)
		}
		if duplicate {
			m.SetErrorStage("deduper")
			return domainProblem(c, domain.ErrDuplicateRequest)
		}

		lane := domain.NewLane(req.Title)
		board.AddLane(lane)
		if uerr := uow.Lanes().Insert(ctx, lane); uerr != nil {
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

		c.Response().Header().Set(echo.HeaderLocation, "/lanes/"+lane.ID.String())
		encodeStart := time.Now()
		err = c.JSON(http.StatusCreated, newLaneResponse(lane))
		m.ObserveEncode(time.Since(encodeStart))
		return err
	}
}

func updateLane(store domain.Store, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		m := observe(c, "PUT /lanes/:laneId", logger)
		defer func() { m.Log(c.Response().Status, err) }()
		ctx := c.Request().Context()

		id, derr := domain.ParseLaneID(c.Param("laneId"))
		if derr != nil {
			m.SetErrorStage("validation")
			return domainProblem(c, domain.ErrInvalidID)
		}
		var req upsertLaneRequest
		if derr := decodeBody(c, &req); derr != nil {
			m.SetErrorStage("decode")
			return badRequestProblem(c, "invalid body")
		}
		fe := domain.FieldErrors{}
		fe.LaneTitle(req.Title)
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
		lane, uerr := uow.Lanes().ByID(ctx, id)
		m.ObserveLoad(time.Since(loadStart))
		if uerr != nil {
			m.SetErrorStage("storage")
			return internalProblem(c, uerr)
		}
		if lane == nil {
			m.SetErrorStage("notfound")
			return domainProblem(c, domain.ErrLaneNotFound)
		}
		if !canEdit(user, lane.UserID) {
			m.SetErrorStage("auth")
			return domainProblem(c, domain.ErrInvalidCredentials)
		}

		lane.Update(req.Title)
		if uerr := uow.Lanes().Update(ctx, lane); uerr != nil {
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
		err = c.JSON(http.StatusOK, newLaneResponse(lane))
		m.ObserveEncode(time.Since(encodeStart))
		return err
	}
}

func getLane(store domain.Store, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		m := observe(c, "GET /lanes/:laneId", logger)
		defer func() { m.Log(c.Response().Status, err) }()
		ctx := c.Request().Context()

		id, derr := domain.ParseLaneID(c.Param("laneId"))
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
		lane, uerr := uow.Lanes().ByID(ctx, id)
		m.ObserveLoad(time.Since(loadStart))
		if uerr != nil {
			m.SetErrorStage("storage")
			return internalProblem(c, uerr)
		}
		if lane == nil {
			m.SetErrorStage("notfound")
			return domainProblem(c, domain.ErrLaneNotFound)
		}

		authStart := time.Now()
		user, uerr := currentUser(ctx, c, auth, uow)
		m.ObserveAuth(time.Since(authStart))
		if uerr != nil {
			m.SetErrorStage("storage")
			return internalProblem(c, uerr)
		}
		if !canView(user, lane.UserID) {
			m.SetErrorStage("auth")
			return domainProblem(c, domain.ErrInvalidCredentials)
		}

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, newLaneDetailResponse(lane))
		m.ObserveEncode(time.Since(encodeStart))
		return err
	}
}

func listLanes(store domain.Store, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		m := observe(c, "GET /boards/:boardId/lanes", logger)
		defer func() { m.Log(c.Response().Status, err) }()
		ctx := c.Request().Context()

		boardID, derr := domain.ParseBoardID(c.Param("boardId"))
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
		board, uerr := uow.Boards().ByID(ctx, boardID)
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

		out := make([]laneResponse, 0, len(board.Lanes))
		for _, l := range board.Lanes {
			out = append(out, newLaneResponse(l))
		}
		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, out)
		m.ObserveEncode(time.Since(encodeStart))
		return err
	}
}
