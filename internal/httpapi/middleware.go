package httpapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gitlab.com/adigun/schoolfin/internal/service"
)

// Identity headers injected by the authentication layer in front of this
// service.
const (
	headerActorID       = "X-Actor-Id"
	headerActorSchoolID = "X-Actor-School-Id"
)

const actorContextKey = "schoolfin.actor"

// actorMiddleware extracts the acting user from the identity headers. The
// auth layer has already authenticated the caller; a missing actor id here
// means the request bypassed it.
func actorMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		actorID, err := strconv.ParseInt(c.Request().Header.Get(headerActorID), 10, 64)
		if err != nil || actorID <= 0 {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing actor identity")
		}

		actor := service.Actor{ID: actorID}
		if raw := c.Request().Header.Get(headerActorSchoolID); raw != "" {
			schoolID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || schoolID <= 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid actor school")
			}
			actor.SchoolID = schoolID
		}

		c.Set(actorContextKey, actor)
		return next(c)
	}
}

// actorFrom returns the actor placed on the context by actorMiddleware.
func actorFrom(c echo.Context) service.Actor {
	actor, _ := c.Get(actorContextKey).(service.Actor)
	return actor
}
