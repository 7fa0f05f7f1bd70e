package middleware

import (
	"github.com/labstack/echo/v4"

	"rewear/pkg/errors"
)

type AdminMiddleware struct{}

func NewAdminMiddleware() *AdminMiddleware {
	return &AdminMiddleware{}
}

// AdminOnly must run after Authenticate.
func (m *AdminMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := CurrentUser(c)
		if !ok {
			return errors.Unauthorized("Authentication required", nil)
		}

		if !user.IsAdmin() {
			return errors.Forbidden("Admin privileges required", nil)
		}

		return next(c)
	}
}
