package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/SimpnicServerTeam/instaclone-auth/internal/service"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AccountIDContextKey is where RequireAuth stores the verified account id.
const AccountIDContextKey = "user"

// TokenVerifier resolves a bearer token to an existing account id.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, tokenString string) (string, error)
}

// RequireAuth validates the Authorization bearer token on every request through the
// token service. Missing, malformed, forged and orphaned tokens all get the same 401.
func RequireAuth(verifier TokenVerifier) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  AccountIDContextKey,
		TokenLookup: "header:Authorization:Bearer ",
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return verifier.VerifyToken(c.Request().Context(), auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			var failure *service.AuthFailure
			var extraction *echojwt.TokenExtractionError
			switch {
			case errors.As(err, &failure):
				log.Warn().Str("kind", failure.Kind.String()).Str("detail", failure.Detail).
					Str("path", c.Path()).Msg("Token rejected")
				return echo.NewHTTPError(http.StatusUnauthorized, failure.Public())
			case errors.As(err, &extraction):
				log.Debug().Err(err).Str("path", c.Path()).Msg("Bearer token missing")
				return echo.NewHTTPError(http.StatusUnauthorized, service.PublicAuthFailureMessage)
			default:
				log.Error().Err(err).Str("path", c.Path()).Msg("Token verification failed")
				return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
			}
		},
	})
}
