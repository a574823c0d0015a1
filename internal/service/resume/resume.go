// Package resume runs the two-phase resume upload: sign a direct upload, then confirm it.
package resume

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobportal-backend/internal/access"
	"jobportal-backend/internal/apperror"
	"jobportal-backend/internal/config"
	"jobportal-backend/internal/database"
	"jobportal-backend/internal/model"
	"jobportal-backend/internal/storage"
)

const downloadTTL = 10 * time.Minute

// Service orchestrates resume uploads against an object store.
type Service struct {
	db     *gorm.DB
	access *access.Resolver
	store  storage.ObjectStore
	cfg    config.ResumeConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds a Service.
func NewService(db *gorm.DB, resolver *access.Resolver, store storage.ObjectStore, cfg config.ResumeConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.UploadWindow <= 0 {
		cfg.UploadWindow = time.Hour
	}
	return &Service{
		db:     db,
		access: resolver,
		store:  store,
		cfg:    cfg,
		logger: logger.With("component", "resume"),
		now:    time.Now,
	}
}

// UploadRequest describes the file a seeker is about to upload.
type UploadRequest struct {
	FileName string `json:"file_name" binding:"required,max=255"`
	FileType string `json:"file_type" binding:"required"`
	FileSize int64  `json:"file_size" binding:"required,gt=0"`
}

// UploadTicket is returned by RequestUpload.
type UploadTicket struct {
	ResumeID uuid.UUID `json:"resume_id"`
	storage.UploadAuthorization
}

// CompleteRequest confirms an upload.
type CompleteRequest struct {
	ResumeID   uuid.UUID `json:"resume_id" binding:"required"`
	StorageKey string    `json:"storage_key" binding:"required"`
}

func (s *Service) allowed(fileType string) bool {
	for _, t := range s.cfg.AllowedTypes {
		if strings.EqualFold(t, fileType) {
			return true
		}
	}
	return false
}

// Fingerprint identifies an upload by its owner and declared file attributes.
func Fingerprint(seekerID uuid.UUID, fileName, fileType string, fileSize int64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%d", seekerID, fileName, fileType, fileSize)))
	return hex.EncodeToString(sum[:])
}

// RequestUpload validates the file, records a resume awaiting upload and signs a one-hour upload form.
func (s *Service) RequestUpload(ctx context.Context, userID uuid.UUID, req UploadRequest) (*UploadTicket, error) {
	fileName := path.Base(strings.TrimSpace(req.FileName))
	if fileName == "" || fileName == "." || fileName == "/" {
		return nil, apperror.Validation("file_name is required")
	}
	if !s.allowed(req.FileType) {
		return nil, apperror.Validation("file type %q is not allowed", req.FileType)
	}
	if req.FileSize <= 0 {
		return nil, apperror.Validation("file_size must be positive")
	}
	if req.FileSize > s.cfg.MaxBytes {
		return nil, apperror.Validation("file_size exceeds the %d byte limit", s.cfg.MaxBytes)
	}

	seeker, err := s.access.SeekerProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	expires := s.now().Add(s.cfg.UploadWindow).UTC()
	resume := model.Resume{
		ID:              uuid.New(),
		JobSeekerID:     seeker.ID,
		FileName:        fileName,
		MimeType:        strings.ToLower(req.FileType),
		Size:            req.FileSize,
		Fingerprint:     Fingerprint(seeker.ID, fileName, req.FileType, req.FileSize),
		ParseStatus:     model.ParseAwaitingUpload,
		UploadExpiresAt: expires,
	}
	key := storage.ResumeKey(seeker.ID.String(), resume.ID.String(), fileName)

	auth, err := s.store.SignUpload(ctx, storage.UploadRequest{
		Key:         key,
		ContentType: resume.MimeType,
		MaxBytes:    s.cfg.MaxBytes,
		Expires:     expires,
	})
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUpstreamStorageError, err, "could not authorize upload")
	}

	if err := s.db.WithContext(ctx).Create(&resume).Error; err != nil {
		return nil, database.TranslateError(err, "resume")
	}
	return &UploadTicket{ResumeID: resume.ID, UploadAuthorization: *auth}, nil
}

// CompleteUpload records the storage key of an uploaded file and queues it for parsing.
// Completing twice with the same key is a no-op.
func (s *Service) CompleteUpload(ctx context.Context, userID uuid.UUID, req CompleteRequest) (*model.Resume, error) {
	resume, err := s.access.ResumeAccess(ctx, userID, req.ResumeID, false)
	if err != nil {
		return nil, err
	}

	expected := storage.ResumeKey(resume.JobSeekerID.String(), resume.ID.String(), resume.FileName)
	if req.StorageKey != expected {
		return nil, apperror.Validation("storage key does not match the issued upload")
	}
	if resume.Uploaded() {
		return resume, nil
	}
	if !s.now().Before(resume.UploadExpiresAt) {
		return nil, apperror.New(apperror.KindInvalidOrExpiredToken, "upload window has expired")
	}

	exists, err := s.store.Exists(ctx, expected)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUpstreamStorageError, err, "could not verify upload")
	}
	if !exists {
		return nil, apperror.Validation("file has not been uploaded")
	}

	res := s.db.WithContext(ctx).Model(resume).
		Where("file_key = ?", "").
		Updates(map[string]interface{}{"file_key": expected, "parse_status": model.ParsePending})
	if res.Error != nil {
		return nil, database.TranslateError(res.Error, "resume")
	}
	resume.FileKey = expected
	resume.ParseStatus = model.ParsePending
	return resume, nil
}

// ListResumes returns the caller's resumes that are not deleted, newest first.
func (s *Service) ListResumes(ctx context.Context, userID uuid.UUID) ([]model.Resume, error) {
	seeker, err := s.access.SeekerProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	resumes := []model.Resume{}
	err = s.db.WithContext(ctx).
		Where("job_seeker_id = ? AND deleted = ?", seeker.ID, false).
		Order("created_at desc").
		Find(&resumes).Error
	return resumes, err
}

// DeleteResume soft deletes a resume and then removes its file. Removing the file is best effort.
// Deleting an already deleted resume succeeds without doing anything.
func (s *Service) DeleteResume(ctx context.Context, userID, resumeID uuid.UUID) error {
	resume, err := s.access.ResumeAccess(ctx, userID, resumeID, true)
	if err != nil {
		return err
	}
	if resume.Deleted {
		return nil
	}

	now := s.now().UTC()
	res := s.db.WithContext(ctx).Model(resume).
		Where("deleted = ?", false).
		Updates(map[string]interface{}{"deleted": true, "deleted_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 || !resume.Uploaded() {
		return nil
	}

	if err := s.store.Delete(ctx, resume.FileKey); err != nil {
		s.logger.Warn("delete resume object", "resume_id", resume.ID, "key", resume.FileKey, "err", err)
	}
	return nil
}

// DownloadURL returns a short-lived signed link to the caller's uploaded resume.
func (s *Service) DownloadURL(ctx context.Context, userID, resumeID uuid.UUID) (string, error) {
	resume, err := s.access.ResumeAccess(ctx, userID, resumeID, false)
	if err != nil {
		return "", err
	}
	if !resume.Uploaded() {
		return "", apperror.Validation("file has not been uploaded")
	}
	link, err := s.store.SignDownload(ctx, resume.FileKey, downloadTTL)
	if err != nil {
		return "", apperror.Wrap(apperror.KindUpstreamStorageError, err, "could not sign download")
	}
	return link, nil
}
