package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/myapp/account-service/internal/core/domain"
)

const msgInternal = "Internal Server Error"

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain errors
// to status codes and renders {"error": "<message>"}. The cause of a 5xx is
// logged once, by the request logger.
func NewHTTPErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		return http.StatusBadRequest, "Please fill all fields."
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusBadRequest, "User with this username or email already exists."
	case errors.Is(err, domain.ErrMissingCredentials):
		return http.StatusBadRequest, "Please provide both username and password."
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials."
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	}

	// Echo's own errors (bind failures, 404 from router) and handlers that
	// chose to expose the raw cause.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	return http.StatusInternalServerError, msgInternal
}
