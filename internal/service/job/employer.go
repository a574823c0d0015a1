package job

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobportal-backend/internal/apperror"
	"jobportal-backend/internal/database"
	"jobportal-backend/internal/model"
)

// CreateEmployer creates the single employer profile of a JOBPROVIDER user.
func (s *Service) CreateEmployer(ctx context.Context, ownerID uuid.UUID, in model.EditableEmployerInfo) (*model.EmployerProfile, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperror.Validation("name is required")
	}

	var owner model.User
	if err := s.db.WithContext(ctx).First(&owner, "id = ?", ownerID).Error; err != nil {
		return nil, database.TranslateError(err, "user")
	}
	if owner.Role != model.RoleJobProvider {
		return nil, apperror.New(apperror.KindForbidden, "only job providers can create an employer")
	}

	var existing int64
	if err := s.db.WithContext(ctx).Model(&model.EmployerProfile{}).
		Where("owner_id = ?", ownerID).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, apperror.New(apperror.KindAlreadyExists, "employer already exists for this user")
	}

	employer := model.EmployerProfile{
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Website:     in.Website,
		Location:    in.Location,
		LogoURL:     in.LogoURL,
	}
	if err := s.db.WithContext(ctx).Create(&employer).Error; err != nil {
		if database.IsUniqueViolation(err, "uq_employer_owner") {
			return nil, apperror.Wrap(apperror.KindAlreadyExists, err, "employer already exists for this user")
		}
		return nil, database.TranslateError(err, "employer")
	}
	return &employer, nil
}

// GetEmployer returns an employer's public profile.
func (s *Service) GetEmployer(ctx context.Context, employerID uuid.UUID) (*model.EmployerProfile, error) {
	var employer model.EmployerProfile
	if err := s.db.WithContext(ctx).First(&employer, "id = ?", employerID).Error; err != nil {
		return nil, database.TranslateError(err, "employer")
	}
	return &employer, nil
}

// MyEmployers lists the employers the user owns or administers.
func (s *Service) MyEmployers(ctx context.Context, userID uuid.UUID) ([]model.EmployerProfile, error) {
	ids, err := s.access.ManagedEmployerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	employers := []model.EmployerProfile{}
	if len(ids) == 0 {
		return employers, nil
	}
	err = s.db.WithContext(ctx).Where("id IN ?", ids).Order("name").Find(&employers).Error
	return employers, err
}

// UpdateEmployer changes the non-empty fields of in. Owners and admins may update.
func (s *Service) UpdateEmployer(ctx context.Context, userID, employerID uuid.UUID, in model.EditableEmployerInfo) (*model.EmployerProfile, error) {
	employer, err := s.access.EmployerWrite(ctx, userID, employerID)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(employer).Updates(model.EmployerProfile{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Website:     in.Website,
		Location:    in.Location,
		LogoURL:     in.LogoURL,
	}).Error; err != nil {
		return nil, database.TranslateError(err, "employer")
	}
	s.invalidateEmployerJobs(ctx, employer.ID)
	return s.GetEmployer(ctx, employer.ID)
}

// requireOwner answers NotFoundOrForbidden unless userID owns employerID. Admins cannot manage admins.
func (s *Service) requireOwner(ctx context.Context, userID, employerID uuid.UUID) error {
	owner, err := s.access.IsEmployerOwner(ctx, userID, employerID)
	if err != nil {
		return err
	}
	if !owner {
		return apperror.NotFoundOrForbidden("employer")
	}
	return nil
}

// ListAdmins returns the admins of an employer to its owner and admins.
func (s *Service) ListAdmins(ctx context.Context, userID, employerID uuid.UUID) ([]model.User, error) {
	employer, err := s.access.EmployerWrite(ctx, userID, employerID)
	if err != nil {
		return nil, err
	}
	admins := []model.User{}
	err = s.db.WithContext(ctx).Model(employer).Order("email").Association("Admins").Find(&admins)
	return admins, err
}

// AddAdmin grants the JOBPROVIDER account with email write access to the employer.
func (s *Service) AddAdmin(ctx context.Context, ownerID, employerID uuid.UUID, email string) ([]model.User, error) {
	if err := s.requireOwner(ctx, ownerID, employerID); err != nil {
		return nil, err
	}

	var user model.User
	err := s.db.WithContext(ctx).First(&user, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFoundOrForbidden("user")
	}
	if err != nil {
		return nil, err
	}
	if user.ID == ownerID {
		return nil, apperror.Validation("the owner cannot be added as an admin")
	}
	if user.Role != model.RoleJobProvider {
		return nil, apperror.Validation("only job provider accounts can administer an employer")
	}

	if err := s.db.WithContext(ctx).Create(&model.EmployerAdmin{EmployerID: employerID, UserID: user.ID}).Error; err != nil {
		return nil, database.TranslateError(err, "employer admin")
	}
	return s.ListAdmins(ctx, ownerID, employerID)
}

// RemoveAdmin revokes an admin's access.
func (s *Service) RemoveAdmin(ctx context.Context, ownerID, employerID, adminID uuid.UUID) error {
	if err := s.requireOwner(ctx, ownerID, employerID); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Where("employer_id = ? AND user_id = ?", employerID, adminID).
		Delete(&model.EmployerAdmin{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFoundOrForbidden("employer admin")
	}
	return nil
}
