package middlewares

import (
	"net/http"
	"strings"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/clipvault/internal/server/service"
)

// CurrentUserContextKey is the key to retrieve the current_user from echo.Context.
const CurrentUserContextKey = "current_user"

// CurrentUser authenticates the request against the identity boundary and
// stores the internal user into echo.Context.
// The identity provider hands clients a signed bearer token whose `sub`
// claim is the stable external user id; the internal user is created lazily
// on first sight (an `email` claim, when present, is kept on the record).
func CurrentUser(users service.UserService, signingKey []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			raw := bearer(c.Request().Header.Get(echo.HeaderAuthorization))
			if raw == "" {
				return unauthorized(c, "Invalid login credentials.")
			}

			token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.NewHTTPError(http.StatusUnauthorized, "unexpected signing method")
				}
				return signingKey, nil
			})
			if err != nil || !token.Valid {
				return unauthorized(c, "Invalid login credentials.")
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return unauthorized(c, "Invalid login credentials.")
			}
			externalID, _ := claims["sub"].(string)
			if externalID == "" {
				return unauthorized(c, "Invalid login credentials.")
			}
			email, _ := claims["email"].(string)

			user, err := users.Upsert(externalID, email)
			if err != nil {
				return err
			}

			// Store current_user for handlers.
			c.Set(CurrentUserContextKey, user)

			if err = next(c); err != nil {
				c.Error(err)
			}

			return nil
		}
	}
}

func bearer(authorization string) string {
	parts := strings.Split(authorization, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}

func unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{
		"error": echo.Map{
			"tag":     "invalid-auth",
			"message": message,
		},
	})
}
