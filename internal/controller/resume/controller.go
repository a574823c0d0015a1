// Package resume provides HTTP handlers for the direct-to-storage resume upload flow.
package resume

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobportal-backend/internal/service/resume"
	"jobportal-backend/internal/utilities"
)

// Controller handles resume related endpoints
type Controller struct {
	Resumes *resume.Service
}

// NewController creates a new instance of Controller
func NewController(resumes *resume.Service) *Controller {
	return &Controller{Resumes: resumes}
}

type downloadResponse struct {
	URL string `json:"url"`
}

// RequestUpload validates a file description and returns a signed upload form.
// @Summary Request a resume upload
// @Description Job seekers only. Post the file to the returned URL with the returned fields, then call upload-complete.
// @Tags Resume
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param File body resume.UploadRequest true "File name, MIME type and size in bytes"
// @Success 201 {object} utilities.Response{data=resume.UploadTicket}
// @Failure 400 {object} utilities.ErrorResponse "Unsupported type or file too large"
// @Failure 404 {object} utilities.ErrorResponse "Caller is not a job seeker"
// @Failure 502 {object} utilities.ErrorResponse "Storage could not sign the upload"
// @Router /resumes/upload-request [post]
func (rc *Controller) RequestUpload(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	var req resume.UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utilities.Fail(c, err)
		return
	}

	ticket, err := rc.Resumes.RequestUpload(c.Request.Context(), user.UserID, req)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusCreated, ticket)
}

// CompleteUpload confirms that the file reached storage.
// @Summary Complete a resume upload
// @Tags Resume
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Upload body resume.CompleteRequest true "Resume ID and the storage key from the upload request"
// @Success 200 {object} utilities.Response{data=model.Resume}
// @Failure 400 {object} utilities.ErrorResponse "Key mismatch, expired window or file missing"
// @Failure 404 {object} utilities.ErrorResponse "Resume not found or access denied"
// @Router /resumes/upload-complete [post]
func (rc *Controller) CompleteUpload(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	var req resume.CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utilities.Fail(c, err)
		return
	}

	completed, err := rc.Resumes.CompleteUpload(c.Request.Context(), user.UserID, req)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusOK, completed)
}

// ListResumes lists the caller's resumes.
// @Summary List my resumes
// @Tags Resume
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utilities.Response{data=[]model.Resume}
// @Failure 404 {object} utilities.ErrorResponse "Caller is not a job seeker"
// @Router /resumes [get]
func (rc *Controller) ListResumes(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	resumes, err := rc.Resumes.ListResumes(c.Request.Context(), user.UserID)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusOK, resumes)
}

// Download returns a short-lived link to an uploaded resume.
// @Summary Resume download link
// @Tags Resume
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resume ID"
// @Success 200 {object} utilities.Response{data=downloadResponse}
// @Failure 400 {object} utilities.ErrorResponse "File not uploaded yet"
// @Failure 404 {object} utilities.ErrorResponse "Resume not found or access denied"
// @Router /resumes/{id}/download [get]
func (rc *Controller) Download(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	id, err := utilities.ParamUUID(c, "id", "resume")
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	link, err := rc.Resumes.DownloadURL(c.Request.Context(), user.UserID, id)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Success(c, http.StatusOK, downloadResponse{URL: link})
}

// DeleteResume removes a resume. Applications keep referring to it.
// @Summary Delete resume
// @Tags Resume
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resume ID"
// @Success 200 {object} utilities.MessageResponse
// @Failure 404 {object} utilities.ErrorResponse "Resume not found or access denied"
// @Router /resumes/{id} [delete]
func (rc *Controller) DeleteResume(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		utilities.Fail(c, err)
		return
	}
	id, err := utilities.ParamUUID(c, "id", "resume")
	if err != nil {
		utilities.Fail(c, err)
		return
	}

	if err := rc.Resumes.DeleteResume(c.Request.Context(), user.UserID, id); err != nil {
		utilities.Fail(c, err)
		return
	}
	utilities.Message(c, http.StatusOK, "resume deleted")
}
