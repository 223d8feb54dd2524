package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"kanban-api/domain"
)

type createIssueRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type updateIssueRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

type issueResponse struct {
	ID          string  `json:"id"`
	LaneID      string  `json:"laneId"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   *string `json:"updatedAt"`
}

func newIssueResponse(i *domain.Issue) issueResponse {
	resp := issueResponse{
		ID:          i.ID.String(),
		LaneID:      i.LaneID.String(),
		Title:       i.Title,
		Description: i.Description,
		Priority:    string(i.Priority),
		CreatedAt:   i.CreatedAt.Format(time.RFC3339),
	}
	if i.UpdatedAt != nil {
		updated := i.UpdatedAt.Format(time.RFC3339)
		resp.UpdatedAt = &updated
	}
	return resp
}

func createIssue(store domain.Store, auth Authenticator, deduper Deduper, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		m := observe(c, "POST /lanes/:laneId/issues", logger)
		defer func() { m.Log(c.Response().Status, err) }()
		ctx := c.Request().Context()

		laneID, derr := domain.ParseLaneID(c.Param("laneId"))
		if derr != nil {
			m.SetErrorStage("validation")
			return domainProblem(c, domain.ErrInvalidID)
		}
		var req createIssueRequest
		if derr := decodeBody(c, &req); derr != nil {
			m.SetErrorStage("decode")
			return badRequestProblem(c, "invalid body")
		}
		fe := domain.FieldErrors{}
		fe.IssueTitle(req.Title)
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
		lane, uerr := uow.Lanes().ByID(ctx, laneID)
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

		key, duplicate, uerr := reserveKey(ctx, c, deduper, user.ID.String())
		if uerr != nil {
			m.SetErrorStage("deduper")
			return internalProblem(c, uerr)
		}
		if duplicate {
			m.SetErrorStage("deduper")
			return domainProblem(c, domain.ErrDuplicateRequest)
		}

		issue := domain.NewIssue(req.Title, req.Description)
		lane.AddIssue(issue)
		if uerr := uow.Issues().Insert(ctx, issue); uerr != nil {
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

		c.Response().Header().Set(echo.HeaderLocation, "/issues/"+issue.ID.String())
		encodeStart := time.Now()
		err = c.JSON(http.StatusCreated, newIssueResponse(issue))
		m.ObserveEncode(time.Since(encodeStart))
		return err
	}
}

func updateIssue(store domain.Store, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		m := observe(c, "PUT /issues/:issueId", logger)
		defer func() { m.Log(c.Response().Status, err) }()
		ctx := c.Request().Context()

		id, derr := domain.ParseIssueID(c.Param("issueId"))
		if derr != nil {
			m.SetErrorStage("validation")
			return domainProblem(c, domain.ErrInvalidID)
		}
		var req updateIssueRequest
		if derr := decodeBody(c, &req); derr != nil {
			m.SetErrorStage("decode")
			return badRequestProblem(c, "invalid body")
		}
		fe := domain.FieldErrors{}
		fe.IssueTitle(req.Title)
		var priority domain.IssuePriority
		if req.Priority != "" {
			var ok bool
			priority, ok = domain.ParseIssuePriority(req.Priority)
			if !ok {
				fe.Add("priority", "The priority must be one of: low, medium, high, critical!")
			}
		}
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
		issue, uerr := uow.Issues().ByID(ctx, id)
		m.ObserveLoad(time.Since(loadStart))
		if uerr != nil {
			m.SetErrorStage("storage")
			return internalProblem(c, uerr)
		}
		if issue == nil {
			m.SetErrorStage("notfound")
			return domainProblem(c, domain.ErrIssueNotFound)
		}
		if !canEdit(user, issue.UserID) {
			m.SetErrorStage("auth")
			return domainProblem(c, domain.ErrInvalidCredentials)
		}

		// An omitted priority keeps the issue's current one.
		if req.Priority == "" {
			priority = issue.Priority
		}
		issue.Update(req.Title, req.Description, priority)
		if uerr := uow.Issues().Update(ctx, issue); uerr != nil {
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
		err = c.JSON(http.StatusOK, newIssueResponse(issue))
		m.ObserveEncode(time.Since(encodeStart))
		return err
	}
}

func getIssue(store domain.Store, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		m := observe(c, "GET /issues/:issueId", logger)
		defer func() { m.Log(c.Response().Status, err) }()
		ctx := c.Request().Context()

		id, derr := domain.ParseIssueID(c.Param("issueId"))
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
		issue, uerr := uow.Issues().ByID(ctx, id)
		m.ObserveLoad(time.Since(loadStart))
		if uerr != nil {
			m.SetErrorStage("storage")
			return internalProblem(c, uerr)
		}
		if issue == nil {
			m.SetErrorStage("notfound")
			return domainProblem(c, domain.ErrIssueNotFound)
		}

		authStart := time.Now()
		user, uerr := currentUser(ctx, c, auth, uow)
		m.ObserveAuth(time.Since(authStart))
		if uerr != nil {
			m.SetErrorStage("storage")
			return internalProblem(c, uerr)
		}
		if !canView(user, issue.UserID) {
			m.SetErrorStage("auth")
			return domainProblem(c, domain.ErrInvalidCredentials)
		}

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, newIssueResponse(issue))
		m.ObserveEncode(time.Since(encodeStart))
		return err
	}
}

func listIssues(store domain.Store, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		m := observe(c, "GET /lanes/:laneId/issues", logger)
		defer func() { m.Log(c.Response().Status, err) }()
		ctx := c.Request().Context()

		laneID, derr := domain.ParseLaneID(c.Param("laneId"))
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
		lane, uerr := uow.Lanes().ByID(ctx, laneID)
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

		out := make([]issueResponse, 0, len(lane.Issues))
		for _, i := range lane.Issues {
			out = append(out, newIssueResponse(i))
		}
		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, out)
		m.ObserveEncode(time.Since(encodeStart))
		return err
	}
}
