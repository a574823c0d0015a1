// Package utilities contain utility code that use across the package
package utilities

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"jobportal-backend/internal/apperror"
	"jobportal-backend/internal/credential"
)

// Envelope statuses
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the envelope of every API response.
type Response struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// ErrorResponse type for swagger docs
type ErrorResponse struct {
	Status  string `json:"status" example:"error"`
	Message string `json:"message" example:"job not found or access denied"`
	Code    string `json:"code" example:"NOT_FOUND_OR_FORBIDDEN"`
}

// MessageResponse type for swagger docs
type MessageResponse struct {
	Status  string `json:"status" example:"success"`
	Message string `json:"message"`
}

// Success writes data inside a success envelope.
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Status: StatusSuccess, Data: data})
}

// Message writes a success envelope that only carries a message.
func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{Status: StatusSuccess, Message: msg})
}

// Fail aborts the request with the error envelope for err. Unclassified errors are logged
// and answered with a generic 500.
func Fail(c *gin.Context, err error) {
	status, body := errorBody(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"request_id", c.GetString(RequestIDKey),
			"err", err,
		)
	}
	c.AbortWithStatusJSON(status, body)
}

// FailWithData aborts with the error envelope and still carries data, for operations
// whose main effect succeeded while a required side effect did not.
func FailWithData(c *gin.Context, err error, data interface{}) {
	status, body := errorBody(err)
	body.Data = data
	c.AbortWithStatusJSON(status, body)
}

func errorBody(err error) (int, Response) {
	var (
		maxBytes   *http.MaxBytesError
		validation validator.ValidationErrors
		syntax     *json.SyntaxError
		typeErr    *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, Response{
			Status:  StatusError,
			Message: "request body too large",
			Code:    string(apperror.KindValidationFailed),
		}
	case errors.As(err, &validation):
		err = apperror.Validation("%s", validationMessage(validation))
	case errors.As(err, &syntax), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		err = apperror.Validation("request body is not valid JSON")
	case errors.As(err, &typeErr):
		err = apperror.Validation("%s has the wrong type", typeErr.Field)
	}

	kind := apperror.KindOf(err)
	return kind.HTTPStatus(), Response{
		Status:  StatusError,
		Message: apperror.Message(err),
		Code:    string(kind),
	}
}

// Context keys set by the middleware.
const (
	IdentityKey  = "identity"
	RequestIDKey = "request_id"
)

// SetUser stores the authenticated caller on the context.
func SetUser(c *gin.Context, id credential.Identity) {
	c.Set(IdentityKey, id)
}

// ExtractUser returns the caller stored by RequireAuth.
// It never aborts; handlers pass the error to Fail.
func ExtractUser(c *gin.Context) (credential.Identity, error) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return credential.Identity{}, apperror.New(apperror.KindInvalidToken, "authentication required")
	}
	id, ok := v.(credential.Identity)
	if !ok {
		return credential.Identity{}, errors.New("identity has unexpected type")
	}
	return id, nil
}

// ParamUUID parses the path parameter name. Malformed ids answer like missing entities.
func ParamUUID(c *gin.Context, name, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		return uuid.Nil, apperror.NotFoundOrForbidden(entity)
	}
	return id, nil
}
