package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/trace"

	"kanban-api/domain"
)

// problem is the error document returned on every failed request.
type problem struct {
	Status     int                 `json:"status"`
	Title      string              `json:"title"`
	Detail     string              `json:"detail,omitempty"`
	TraceID    string              `json:"traceId,omitempty"`
	Errors     map[string][]string `json:"errors,omitempty"`
	ErrorCodes []string            `json:"errorCodes,omitempty"`
}

func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// domainProblem renders a single classified domain error.
func domainProblem(c echo.Context, derr *domain.Error) error {
	status := statusForKind(derr.Kind)
	return c.JSON(status, problem{
		Status:     status,
		Title:      http.StatusText(status),
		Detail:     derr.Detail,
		TraceID:    traceID(c),
		ErrorCodes: []string{derr.Code},
	})
}

// validationProblem renders a field-to-messages map for multi-error
// validation failures.
func validationProblem(c echo.Context, fe domain.FieldErrors) error {
	return c.JSON(http.StatusBadRequest, problem{
		Status:  http.StatusBadRequest,
		Title:   "One or more validation errors occurred.",
		TraceID: traceID(c),
		Errors:  fe,
	})
}

func badRequestProblem(c echo.Context, detail string) error {
	return c.JSON(http.StatusBadRequest, problem{
		Status:  http.StatusBadRequest,
		Title:   http.StatusText(http.StatusBadRequest),
		Detail:  detail,
		TraceID: traceID(c),
	})
}

// internalProblem hides the underlying failure from the client; the trace id
// is the only correlation handle it gets.
func internalProblem(c echo.Context, err error) error {
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, problem{
		Status:  http.StatusInternalServerError,
		Title:   http.StatusText(http.StatusInternalServerError),
		TraceID: traceID(c),
	})
}

func traceID(c echo.Context) string {
	sc := trace.SpanFromContext(c.Request().Context()).SpanContext()
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
