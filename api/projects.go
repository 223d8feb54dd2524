package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"kanban-api/domain"
)

type upsertProjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type projectResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
}

type projectDetailResponse struct {
	projectResponse
	Boards []boardResponse `json:"boards"`
}

func newProjectResponse(p *domain.Project) projectResponse {
	return projectResponse{
		ID:          p.ID.String(),
		Title:       p.Title,
		Description: p.Description,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}

func newProjectDetailResponse(p *domain.Project) projectDetailResponse {
	boards := make([]boardResponse, 0, len(p.Boards))
	for _, b := range p.Boards {
		boards = append(boards, newBoardResponse(b))
	}
	return projectDetailResponse{projectResponse: newProjectResponse(p), Boards: boards}
}

func createProject(store domain.Store, auth Authenticator, deduper Deduper, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		m := observe(c, "POST /projects", logger)
		defer func() { m.Log(c.Response().Status, err) }()
		ctx := c.Request().Context()

		var req upsertProjectRequest
		if derr := decodeBody(c, &req); derr != nil {
			m.SetErrorStage("decode")
			return badRequestProblem(c, "invalid body")
		}
		fe := domain.FieldErrors{}
		fe.ProjectTitle(req.Title)
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

		key, duplicate, uerr := reserveKey(ctx, c, deduper, user.ID.String())
		if uerr != nil {
			m.SetErrorStage("deduper")
			return internalProblem(c, uerr)
		}
		if duplicate {
			m.SetErrorStage("deduper")
			return domainProblem(c, domain.ErrDuplicateRequest)
		}

		project := domain.NewProject(req.Title, req.Description)
		user.AddProject(project)
		if uerr := uow.Projects().Insert(ctx, project); uerr != nil {
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

		c.Response().Header().Set(echo.HeaderLocation, "/projects/"+project.ID.String())
		encodeStart := time.Now()
		err = c.JSON(http.StatusCreated, newProjectResponse(project))
		m.ObserveEncode(time.Since(encodeStart))
		return err
	}
}

func updateProject(store domain.Store, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		m := observe(c, "PUT /projects/:projectId", logger)
		defer func() { m.Log(c.Response().Status, err) }()
		ctx := c.Request().Context()

		id, derr := domain.ParseProjectID(c.Param("projectId"))
		if derr != nil {
			m.SetErrorStage("validation")
			return domainProblem(c, domain.ErrInvalidID)
		}
		var req upsertProjectRequest
		if derr := decodeBody(c, &req); derr != nil {
			m.SetErrorStage("decode")
			return badRequestProblem(c, "invalid body")
		}
		fe := domain.FieldErrors{}
		fe.ProjectTitle(req.Title)
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
		project, uerr := uow.Projects().ByID(ctx, id)
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

		project.Update(req.Title, req.Description)
		if uerr := uow.Projects().Update(ctx, project); uerr != nil {
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
		err = c.JSON(http.StatusOK, newProjectResponse(project))
		m.ObserveEncode(time.Since(encodeStart))
		return err
	}
}

func getProject(store domain.Store, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		m := observe(c, "GET /projects/:projectId", logger)
		defer func() { m.Log(c.Response().Status, err) }()
		ctx := c.Request().Context()

		id, derr := domain.ParseProjectID(c.Param("projectId"))
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
		project, uerr := uow.Projects().ByID(ctx, id)
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

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, newProjectDetailResponse(project))
		m.ObserveEncode(time.Since(encodeStart))
		return err
	}
}

func listProjects(store domain.Store, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		m := observe(c, "GET /projects", logger)
		defer func() { m.Log(c.Response().Status, err) }()
		ctx := c.Request().Context()

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
		projects, uerr := uow.Projects().ByUserID(ctx, user.ID)
		m.ObserveLoad(time.Since(loadStart))
		if uerr != nil {
			m.SetErrorStage("storage")
			return internalProblem(c, uerr)
		}

		out := make([]projectResponse, 0, len(projects))
		for _, p := range projects {
			out = append(out, newProjectResponse(p))
		}
		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, out)
		m.ObserveEncode(time.Since(encodeStart))
		return err
	}
}
