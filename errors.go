package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo"
	"github.com/rs/zerolog"

	"github.com/himanshub16/vibezone/models"
)

// APIError is a request the service refused. Code is the HTTP status and
// Message is shown to the user as is.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

func newAPIError(code int, format string, args ...interface{}) *APIError {
	return &APIError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// errLoginRequired is answered with {"status": "login_required"}.
var errLoginRequired = errors.New("login required")

const unexpectedErrorMessage = "An unexpected error occurred."

// newHTTPErrorHandler renders every error a handler returns as a JSON
// reply the clients understand.
func newHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			code = http.StatusInternalServerError
			body interface{}
		)
		var apiErr *APIError
		var httpErr *echo.HTTPError
		switch {
		case errors.Is(err, errLoginRequired):
			code = http.StatusUnauthorized
			body = models.ActionReply{Status: models.StatusLoginRequired}
		case errors.As(err, &apiErr):
			code = apiErr.Code
			body = models.ActionReply{Error: apiErr.Message}
		case errors.As(err, &httpErr):
			code = httpErr.Code
			body = models.ActionReply{Error: fmt.Sprint(httpErr.Message)}
		default:
			log.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("request failed")
			body = models.ActionReply{Error: unexpectedErrorMessage}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, body)
		}
		if err != nil {
			log.Error().Err(err).Msg("failed to write error reply")
		}
	}
}
