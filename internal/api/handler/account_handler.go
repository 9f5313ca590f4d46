package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/myapp/account-service/internal/api/metrics"
	"github.com/myapp/account-service/internal/core/domain"
	"github.com/myapp/account-service/internal/core/ports"
)

const (
	msgUserDeleted  = "User deleted successfully"
	msgLoginSuccess = "Login successful!"
)

// AccountHandler handles HTTP requests for user accounts.
type AccountHandler struct {
	service ports.AccountService
}

func NewAccountHandler(service ports.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// ListUsers handles GET /myapp/userList.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {object}  userListResponse
// @Failure      500  {object}  errorResponse
// @Router       /myapp/userList [get]
func (h *AccountHandler) ListUsers(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userListResponse{Users: users})
}

// EditInfo handles POST /myapp/user/:id/editInfo and returns the full record.
//
// @Summary      Load a user for editing
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /myapp/user/{id}/editInfo [post]
func (h *AccountHandler) EditInfo(c echo.Context) error {
	user, err := h.service.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

// Update handles PUT /myapp/user/:id.
//
// @Summary      Update a user profile
// @Description  Overwrites username, email and phoneNo. Omitted fields are stored as empty strings.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateUserRequest  true  "Profile fields"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /myapp/user/{id} [put]
func (h *AccountHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.service.UpdateUser(c.Request().Context(), c.Param("id"), ports.UserProfile{
		Username: req.Username,
		Email:    req.Email,
		PhoneNo:  string(req.PhoneNo),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

// Delete handles DELETE /myapp/user/:id.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /myapp/user/{id} [delete]
func (h *AccountHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteUser(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	metrics.UsersDeletedTotal.Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: msgUserDeleted})
}

// Register handles POST /myapp/registration.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /myapp/registration [post]
func (h *AccountHandler) Register(c echo.Context) error {
	var req registerRequest
	// An unreadable body is handled like an empty one and fails validation.
	_ = c.Bind(&req)
	if err := c.Validate(&req); err != nil {
		metrics.RegistrationsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		return domain.ErrMissingFields
	}

	user, err := h.service.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		PhoneNo:  string(req.PhoneNo),
	})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues(registrationResult(err)).Inc()
		return exposeUnexpected(err, domain.ErrMissingFields, domain.ErrUserExists)
	}

	metrics.RegistrationsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	return c.JSON(http.StatusCreated, userResponse{User: user})
}

// Login handles POST /myapp/login. A successful login only returns a message.
//
// @Summary      Check credentials
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /myapp/login [post]
func (h *AccountHandler) Login(c echo.Context) error {
	var req loginRequest
	_ = c.Bind(&req)
	if err := c.Validate(&req); err != nil {
		metrics.LoginsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		return domain.ErrMissingCredentials
	}

	if err := h.service.Login(c.Request().Context(), req.Username, req.Password); err != nil {
		metrics.LoginsTotal.WithLabelValues(loginResult(err)).Inc()
		return exposeUnexpected(err, domain.ErrMissingCredentials, domain.ErrInvalidCredentials)
	}

	metrics.LoginsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: msgLoginSuccess})
}

// exposeUnexpected passes known errors through to the error handler and turns
// anything else into a 500 carrying the raw error message.
func exposeUnexpected(err error, known ...error) error {
	for _, k := range known {
		if errors.Is(err, k) {
			return err
		}
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
}

func registrationResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		return metrics.ResultInvalid
	case errors.Is(err, domain.ErrUserExists):
		return metrics.ResultConflict
	default:
		return metrics.ResultError
	}
}

func loginResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingCredentials):
		return metrics.ResultInvalid
	case errors.Is(err, domain.ErrInvalidCredentials):
		return metrics.ResultRejected
	default:
		return metrics.ResultError
	}
}
