package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Roles carried in the token's "role" claim.  Scorekeepers may write;
// spectators only read and watch the live feed.
const (
	RoleScorekeeper = "SCOREKEEPER"
	RoleSpectator   = "SPECTATOR"
)

// RequireRole returns a middleware that enforces that the
// authenticated session carries one of the given roles.  It assumes
// JWTAuth already stored the role claim under "role".
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
