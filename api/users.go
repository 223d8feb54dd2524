package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"kanban-api/domain"
)

type registerUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"createdAt"`
}

type loginUserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	JwtToken string `json:"jwtToken"`
}

func newUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

func registerUser(store domain.Store, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		m := observe(c, "POST /users", logger)
		defer func() { m.Log(c.Response().Status, err) }()
		ctx := c.Request().Context()

		var req registerUserRequest
		if derr := decodeBody(c, &req); derr != nil {
			m.SetErrorStage("decode")
			return badRequestProblem(c, "invalid body")
		}
		fe := domain.FieldErrors{}
		fe.Username(req.Username)
		fe.Password(req.Password)
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

		loadStart := time.Now()
		existing, uerr := uow.Users().ByUsername(ctx, req.Username)
		m.ObserveLoad(time.Since(loadStart))
		if uerr != nil {
			m.SetErrorStage("storage")
			return internalProblem(c, uerr)
		}
		if existing != nil {
			m.SetErrorStage("conflict")
			return domainProblem(c, domain.ErrUsernameTaken)
		}

		hashed, uerr := hashPassword(req.Password)
		if uerr != nil {
			m.SetErrorStage("hash")
			return internalProblem(c, uerr)
		}

		user := domain.NewUser(req.Username, hashed)
		if uerr := uow.Users().Insert(ctx, user); uerr != nil {
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

		c.Response().Header().Set(echo.HeaderLocation, "/users/"+user.ID.String())
		encodeStart := time.Now()
		err = c.JSON(http.StatusCreated, newUserResponse(user))
		m.ObserveEncode(time.Since(encodeStart))
		return err
	}
}

func loginUser(store domain.Store, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		m := observe(c, "POST /login", logger)
		defer func() { m.Log(c.Response().Status, err) }()
		ctx := c.Request().Context()

		var req loginUserRequest
		if derr := decodeBody(c, &req); derr != nil {
			m.SetErrorStage("decode")
			return badRequestProblem(c, "invalid body")
		}
		fe := domain.FieldErrors{}
		fe.Required("username", "Username", req.Username)
		fe.Required("password", "Password", req.Password)
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

		loadStart := time.Now()
		user, uerr := uow.Users().ByUsername(ctx, req.Username)
		m.ObserveLoad(time.Since(loadStart))
		if uerr != nil {
			m.SetErrorStage("storage")
			return internalProblem(c, uerr)
		}
		// Unknown username and wrong password fail identically so the
		// response never leaks which usernames exist.
		if user == nil || !verifyPassword(req.Password, user.HashedPassword) {
			m.SetErrorStage("credentials")
			return domainProblem(c, domain.ErrInvalidCredentials)
		}

		token, uerr := auth.IssueToken(user.ID.String(), user.Username)
		if uerr != nil {
			m.SetErrorStage("token")
			return internalProblem(c, uerr)
		}

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, loginUserResponse{
			ID:       user.ID.String(),
			Username: user.Username,
			JwtToken: token,
		})
		m.ObserveEncode(time.Since(encodeStart))
		return err
	}
}

func getUser(store domain.Store, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		m := observe(c, "GET /users/:userId", logger)
		defer func() { m.Log(c.Response().Status, err) }()
		ctx := c.Request().Context()

		id, derr := domain.ParseUserID(c.Param("userId"))
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
		// Users are only visible to themselves. An id that belongs to no
		// user at all is reported as absent rather than forbidden.
		if user.ID != id {
			loadStart := time.Now()
			other, oerr := uow.Users().ByID(ctx, id)
			m.ObserveLoad(time.Since(loadStart))
			if oerr != nil {
				m.SetErrorStage("storage")
				return internalProblem(c, oerr)
			}
			if other == nil {
				m.SetErrorStage("notfound")
				return domainProblem(c, domain.ErrUserNotFound)
			}
			m.SetErrorStage("auth")
			return domainProblem(c, domain.ErrInvalidCredentials)
		}

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, newUserResponse(user))
		m.ObserveEncode(time.Since(encodeStart))
		return err
	}
}
