package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func adminMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin && contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// tenantMiddleware pins teachers to their own school; admins may address any
// school. A teacher probing another tenant gets a 404, not a 403, so tenant
// ids leak nothing.
func tenantMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			schoolID := ctx.Param("schoolID")
			if schoolID == "" {
				return errHttpNotFound
			}
			if claims.IsAdmin || (claims.IsTeacher && claims.SchoolID == schoolID) {
				return next(ctx)
			}
			return errHttpNotFound
		}
	}
}

func schoolID(ctx echo.Context) string {
	return ctx.Param("schoolID")
}
