package middleware

import (
	"github.com/gin-gonic/gin"

	"jobportal-backend/internal/apperror"
	"jobportal-backend/internal/model"
	"jobportal-backend/internal/utilities"
)

// CheckRole will protect endpoint from user that is not one of roles. Run it after RequireAuth.
func CheckRole(roles ...model.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, err := utilities.ExtractUser(ctx)
		if err != nil {
			utilities.Fail(ctx, err)
			return
		}

		if !utilities.Contains(roles, user.Role) {
			utilities.Fail(ctx, apperror.New(apperror.KindForbidden, "your role cannot access this endpoint"))
			return
		}
		ctx.Next()
	}
}
