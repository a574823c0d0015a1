package account

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"jobportal-backend/internal/apperror"
	"jobportal-backend/internal/database"
	"jobportal-backend/internal/model"
)

const maxSkills = 100

// UpdateProfileInput changes the non-nil fields of a seeker profile. Skills replaces the whole list.
type UpdateProfileInput struct {
	DesiredTitle   *string        `json:"desired_title" binding:"omitempty,max=200"`
	Headline       *string        `json:"headline" binding:"omitempty,max=500"`
	Location       *string        `json:"location" binding:"omitempty,max=200"`
	Skills         *[]model.Skill `json:"skills" binding:"omitempty,max=100,dive"`
	ProfileVisible *bool          `json:"profile_visible"`
	ShowContact    *bool          `json:"show_contact"`
}

func (in UpdateProfileInput) changes() (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if in.DesiredTitle != nil {
		out["desired_title"] = strings.TrimSpace(*in.DesiredTitle)
	}
	if in.Headline != nil {
		out["headline"] = strings.TrimSpace(*in.Headline)
	}
	if in.Location != nil {
		out["location"] = strings.TrimSpace(*in.Location)
	}
	if in.Skills != nil {
		skills, err := cleanSkills(*in.Skills)
		if err != nil {
			return nil, err
		}
		out["skills"] = datatypes.JSONSlice[model.Skill](skills)
	}
	if in.ProfileVisible != nil {
		out["profile_visible"] = *in.ProfileVisible
	}
	if in.ShowContact != nil {
		out["show_contact"] = *in.ShowContact
	}
	return out, nil
}

// cleanSkills trims every entry and checks it. Order is kept.
func cleanSkills(skills []model.Skill) ([]model.Skill, error) {
	if len(skills) > maxSkills {
		return nil, apperror.Validation("at most %d skills are allowed", maxSkills)
	}
	out := make([]model.Skill, 0, len(skills))
	for i, sk := range skills {
		sk.Category = strings.TrimSpace(sk.Category)
		sk.Work = strings.TrimSpace(sk.Work)
		if sk.Category == "" || sk.Work == "" {
			return nil, apperror.Validation("skills[%d]: category and work are required", i)
		}
		if sk.Confidence < 0 || sk.Confidence > 100 {
			return nil, apperror.Validation("skills[%d]: confidence must be between 0 and 100", i)
		}
		out = append(out, sk)
	}
	return out, nil
}

// GetProfile returns the caller's seeker profile with its account.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*model.JobSeekerProfile, error) {
	profile, err := s.access.SeekerProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.User = user
	return profile, nil
}

// UpdateProfile applies in to the caller's seeker profile.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*model.JobSeekerProfile, error) {
	profile, err := s.access.SeekerProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	changes, err := in.changes()
	if err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		if err := s.db.WithContext(ctx).Model(profile).Updates(changes).Error; err != nil {
			return nil, database.TranslateError(err, "job seeker profile")
		}
	}
	return s.GetProfile(ctx, userID)
}
