package utilities

import (
	"strings"

	"github.com/gin-gonic/gin"

	"jobportal-backend/internal/apperror"
)

// ExtractBearerToken returns the token of an "Authorization: Bearer <token>" header.
func ExtractBearerToken(c *gin.Context) (string, error) {
	const bearerSchema = "bearer "
	header := strings.TrimSpace(c.GetHeader("Authorization"))

	if len(header) <= len(bearerSchema) || !strings.EqualFold(header[:len(bearerSchema)], bearerSchema) {
		return "", apperror.New(apperror.KindInvalidToken, "missing or malformed authorization header")
	}
	return strings.TrimSpace(header[len(bearerSchema):]), nil
}
