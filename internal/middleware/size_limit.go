package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobportal-backend/internal/utilities"
)

// SizeLimit rejects requests whose declared body exceeds maxBodyBytes and caps the body reader
// for the rest, so decoding an oversized body fails with *http.MaxBytesError.
func SizeLimit(maxBodyBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBodyBytes {
			utilities.Fail(c, &http.MaxBytesError{Limit: maxBodyBytes})
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
		}
		c.Next()
	}
}
