package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func roleMiddleware(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.Role != role {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

func managerMiddleware() echo.MiddlewareFunc { return roleMiddleware(RoleManager) }

func teacherMiddleware() echo.MiddlewareFunc { return roleMiddleware(RoleTeacher) }
