// Package notification provides HTTP handlers for the in-app notification inbox.
package notification

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobportal-backend/internal/model"
	"jobportal-backend/internal/notify"
	"jobportal-backend/internal/service"
	"jobportal-backend/internal/utilities"
)

// Controller handles notification endpoints
type Controller struct {
	Store *notify.Store
}

// NewController creates a new instance of Controller
func NewController(store *notify.Store) *Controller {
	return &Controller{Store: store}
}

type listQuery struct {
	service.Paging
	Unread bool `form:"unread"`
}

type readAllResponse struct {
	Updated int64 `json:"updated"`
}

// List returns the caller's notifications, newest first.
// @Summary List my notifications
// @Tags Notification
// @Produce json
// @Security BearerAuth
// @Param unread query bool false "Only unread notifications when true"
// @Param page query int false "Page, from 1"
// @Param limit query int false "Page size, at most 100"
// @Success 200 {object} utilities.Response{data=service.Page[model.Notification]}
// @Failure 400 {object} utilities.ErrorResponse "Invalid query"
// @Router /notifications [get]
func (nc *Controller) List(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utilities.Fail(c, err)
		return
	}
	p := q.Paging.Normalize()

	items, total, err := nc.Store.List(c.Request.Context(), user.UserID, notify.ListFilter{
		UnreadOnly: q.Unread,
		Offset:     p.Offset(),
		Limit:      p.Limit,
	})
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusOK, service.NewPage[model.Notification](items, total, p))
}

// MarkRead marks one notification as read.
// @Summary Mark notification read
// @Tags Notification
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} utilities.MessageResponse
// @Failure 404 {object} utilities.ErrorResponse "Notification not found"
// @Router /notifications/{id}/read [patch]
func (nc *Controller) MarkRead(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	id, err := utilities.ParamUUID(c, "id", "notification")
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	if err := nc.Store.MarkRead(c.Request.Context(), user.UserID, id); err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Message(c, http.StatusOK, "notification marked as read")
}

// MarkAllRead marks every unread notification of the caller as read.
// @Summary Mark all notifications read
// @Tags Notification
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utilities.Response{data=readAllResponse}
// @Router /notifications/read-all [post]
func (nc *Controller) MarkAllRead(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	n, err := nc.Store.MarkAllRead(c.Request.Context(), user.UserID)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusOK, readAllResponse{Updated: n})
}
