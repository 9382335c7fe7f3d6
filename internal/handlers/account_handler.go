package handlers

import (
	"errors"
	"net/http"

	"github.com/SimpnicServerTeam/instaclone-auth/internal/middleware"
	"github.com/SimpnicServerTeam/instaclone-auth/internal/models"
	"github.com/SimpnicServerTeam/instaclone-auth/internal/repository"
	"github.com/SimpnicServerTeam/instaclone-auth/internal/service"
	"github.com/SimpnicServerTeam/instaclone-auth/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type AccountHandler struct {
	AccountService service.AccountGenerator
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService service.AccountGenerator) *AccountHandler {
	return &AccountHandler{
		AccountService: accountService,
	}
}

// Register handles POST /users
func (h *AccountHandler) Register(c echo.Context) error {
	req := new(models.RegisterRequest)
	if err := bindAndValidate(c, req, req.Normalize); err != nil {
		return err
	}

	account, err := h.AccountService.Register(c.Request().Context(), *req)
	if err != nil {
		return h.fail(err, "Registration failed")
	}

	return c.JSON(http.StatusOK, models.AccountResponse{User: account.View()})
}

// Login handles POST /user/login
func (h *AccountHandler) Login(c echo.Context) error {
	req := new(models.LoginRequest)
	if err := bindAndValidate(c, req, req.Normalize); err != nil {
		return err
	}

	account, token, err := h.AccountService.Login(c.Request().Context(), *req)
	if err != nil {
		return h.fail(err, "Login failed")
	}

	return c.JSON(http.StatusOK, withToken(account, token))
}

// Current handles GET /user
func (h *AccountHandler) Current(c echo.Context) error {
	accountID, err := accountIDFromContext(c)
	if err != nil {
		return err
	}

	account, err := h.AccountService.Current(c.Request().Context(), accountID)
	if err != nil {
		return h.fail(err, "Failed to load account")
	}

	return c.JSON(http.StatusOK, models.AccountResponse{User: account.View()})
}

// Update handles PUT /user. Unknown JSON fields are ignored, only the profile allow-list is applied.
func (h *AccountHandler) Update(c echo.Context) error {
	accountID, err := accountIDFromContext(c)
	if err != nil {
		return err
	}

	req := new(models.UpdateAccountRequest)
	if err := bindAndValidate(c, req, req.Normalize); err != nil {
		return err
	}

	account, token, err := h.AccountService.Update(c.Request().Context(), accountID, *req)
	if err != nil {
		return h.fail(err, "Failed to update account")
	}

	return c.JSON(http.StatusOK, withToken(account, token))
}

// ChangePassword handles PUT /user/password
func (h *AccountHandler) ChangePassword(c echo.Context) error {
	accountID, err := accountIDFromContext(c)
	if err != nil {
		return err
	}

	req := new(models.ChangePasswordRequest)
	if err := bindAndValidate(c, req, req.Normalize); err != nil {
		return err
	}

	account, token, err := h.AccountService.ChangePassword(c.Request().Context(), accountID, *req)
	if err != nil {
		return h.fail(err, "Failed to change password")
	}

	return c.JSON(http.StatusOK, withToken(account, token))
}

// Delete handles DELETE /user
func (h *AccountHandler) Delete(c echo.Context) error {
	accountID, err := accountIDFromContext(c)
	if err != nil {
		return err
	}

	if err := h.AccountService.Delete(c.Request().Context(), accountID); err != nil {
		return h.fail(err, "Failed to delete account")
	}

	return c.NoContent(http.StatusNoContent)
}

func withToken(account *models.Account, token string) models.AccountResponse {
	view := account.View()
	view.Token = token
	return models.AccountResponse{User: view}
}

// bindAndValidate binds the JSON body into req, normalizes it and runs the echo validator.
// Validation failures become a 400 whose body lists the rejected fields.
func bindAndValidate(c echo.Context, req any, normalize func()) error {
	if err := c.Bind(req); err != nil {
		log.Debug().Err(err).Str("path", c.Path()).Msg("Failed to bind request")
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	normalize()

	if err := c.Validate(req); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			return echo.NewHTTPError(http.StatusBadRequest, models.ErrorResponse{
				Error:  "Validation failed",
				Errors: verr.Fields,
			})
		}
		log.Error().Err(err).Str("path", c.Path()).Msg("Request validation errored")
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	return nil
}

// fail maps service errors to HTTP responses. Authentication failures never reveal their kind.
func (h *AccountHandler) fail(err error, logMsg string) error {
	var failure *service.AuthFailure
	switch {
	case errors.As(err, &failure):
		log.Warn().Str("kind", failure.Kind.String()).Str("detail", failure.Detail).Msg(logMsg)
		return echo.NewHTTPError(http.StatusUnauthorized, failure.Public())
	case errors.Is(err, repository.ErrEmailInUse):
		return echo.NewHTTPError(http.StatusConflict, models.ErrorResponse{
			Error:  "Conflict",
			Errors: []models.FieldError{{Field: "email", Message: "E-mail is already in use"}},
		})
	case errors.Is(err, repository.ErrUsernameInUse):
		return echo.NewHTTPError(http.StatusConflict, models.ErrorResponse{
			Error:  "Conflict",
			Errors: []models.FieldError{{Field: "username", Message: "Username is already in use"}},
		})
	case errors.Is(err, repository.ErrAccountExists):
		return echo.NewHTTPError(http.StatusConflict, models.ErrorResponse{Error: "Account already exists"})
	case errors.Is(err, repository.ErrAccountNotFound):
		// The token verified moments ago but the account is gone.
		log.Warn().Err(err).Msg(logMsg)
		return echo.NewHTTPError(http.StatusUnauthorized, service.PublicAuthFailureMessage)
	default:
		log.Error().Err(err).Msg(logMsg)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
}

// accountIDFromContext returns the account id stored by the auth middleware.
func accountIDFromContext(c echo.Context) (string, error) {
	userContext := c.Get(middleware.AccountIDContextKey)
	if userContext == nil {
		log.Error().Msg("'user' not found in context. This indicates a middleware issue or misconfiguration.")
		return "", echo.NewHTTPError(http.StatusUnauthorized, service.PublicAuthFailureMessage)
	}

	accountID, ok := userContext.(string)
	if !ok || accountID == "" {
		log.Error().Interface("actualType", userContext).Msg("'user' in context is not a non-empty account id")
		return "", echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
	}
	return accountID, nil
}
