// Package middleware contain utilities middleware code
package middleware

import (
	"github.com/gin-gonic/gin"

	"jobportal-backend/internal/credential"
	"jobportal-backend/internal/utilities"
)

// RequireAuth validates the Bearer access token and stores the caller's identity on the context.
// Tokens are verified by signature, issuer and expiry only; no storage is consulted.
func RequireAuth(creds *credential.Manager) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, err := utilities.ExtractBearerToken(ctx)
		if err != nil {
			utilities.Fail(ctx, err)
			return
		}

		identity, err := creds.ParseAccessToken(tokenString)
		if err != nil {
			utilities.Fail(ctx, err)
			return
		}

		utilities.SetUser(ctx, *identity)
		ctx.Next()
	}
}
