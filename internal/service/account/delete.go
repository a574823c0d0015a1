package account

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobportal-backend/internal/database"
	"jobportal-backend/internal/model"
	"jobportal-backend/internal/storage"
)

// Row sets owned by the user named @uid, built from the nested ownership chain.
const (
	seekerIDs      = `SELECT id FROM job_seeker_profiles WHERE user_id = @uid`
	employerIDs    = `SELECT id FROM employer_profiles WHERE owner_id = @uid`
	jobIDs         = `SELECT id FROM jobs WHERE employer_id IN (` + employerIDs + `)`
	applicationIDs = `SELECT id FROM applications WHERE job_seeker_id IN (` + seekerIDs + `) OR job_id IN (` + jobIDs + `)`
)

// cascadeScopes holds the WHERE clause selecting the user's rows in each table of model.CascadeOrder.
var cascadeScopes = map[string]string{
	"application_status_events": `application_id IN (` + applicationIDs + `)`,
	"applications":              `id IN (` + applicationIDs + `)`,
	"resumes":                   `job_seeker_id IN (` + seekerIDs + `)`,
	"jobs":                      `employer_id IN (` + employerIDs + `)`,
	"employer_admins":           `employer_id IN (` + employerIDs + `) OR user_id = @uid`,
	"employer_profiles":         `owner_id = @uid`,
	"job_seeker_profiles":       `user_id = @uid`,
	"refresh_tokens":            `user_id = @uid`,
	"password_reset_tokens":     `user_id = @uid`,
	"email_verifications":       `user_id = @uid`,
	"notifications":             `user_id = @uid`,
	"users":                     `id = @uid`,
}

// DeleteAccount removes the user and everything that hangs off it in one transaction:
// applications to and from the user with their history, resumes, jobs, the employer
// with its admin grants, the seeker profile, credentials and notifications.
// Stored resume files are removed afterwards on a best-effort basis.
func (s *Service) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.Me(ctx, userID); err != nil {
		return err
	}

	var seekers []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&model.JobSeekerProfile{}).
		Where("user_id = ?", userID).
		Pluck("id", &seekers).Error; err != nil {
		return err
	}
	var jobs []model.Job
	if err := s.db.WithContext(ctx).Select("id", "slug").
		Where("employer_id IN (?)", s.db.Model(&model.EmployerProfile{}).Select("id").Where("owner_id = ?", userID)).
		Find(&jobs).Error; err != nil {
		return err
	}

	err := database.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		for _, table := range model.CascadeOrder {
			scope, ok := cascadeScopes[table]
			if !ok {
				return fmt.Errorf("no deletion scope for table %s", table)
			}
			if err := tx.Exec("DELETE FROM "+table+" WHERE "+scope, sql.Named("uid", userID)).Error; err != nil {
				return fmt.Errorf("delete %s: %w", table, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, id := range seekers {
		if err := s.store.DeletePrefix(ctx, storage.SeekerPrefix(id.String())); err != nil {
			s.logger.Warn("delete resume objects", "user_id", userID, "seeker_id", id, "err", err)
		}
	}
	for i := range jobs {
		if err := s.jobs.Invalidate(ctx, &jobs[i]); err != nil {
			s.logger.Warn("invalidate cached job", "job_id", jobs[i].ID, "err", err)
		}
	}
	s.logger.Info("account deleted", "user_id", userID)
	return nil
}
