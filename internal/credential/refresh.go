package credential

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobportal-backend/internal/apperror"
	"jobportal-backend/internal/model"
)

func (m *Manager) conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if db == nil {
		db = m.db
	}
	return db.WithContext(ctx)
}

// IssueRefreshToken creates an opaque refresh secret for userID and stores its hash.
// Pass a transaction as db to tie issuance to other writes, or nil for the manager's database.
func (m *Manager) IssueRefreshToken(ctx context.Context, db *gorm.DB, userID uuid.UUID) (string, error) {
	secret, err := newSecret()
	if err != nil {
		return "", err
	}

	row := model.RefreshToken{
		UserID:    userID,
		TokenHash: hashSecret(secret),
		ExpiresAt: m.now().Add(m.cfg.RefreshTTL),
	}
	if err := m.conn(ctx, db).Create(&row).Error; err != nil {
		return "", fmt.Errorf("store refresh token: %w", err)
	}
	return secret, nil
}

// RotateRefreshToken revokes the presented secret and issues a replacement for the same user.
// Unknown, revoked and expired secrets fail with InvalidCredential.
func (m *Manager) RotateRefreshToken(ctx context.Context, secret string) (uuid.UUID, string, error) {
	var (
		userID    uuid.UUID
		newSecret string
	)

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := m.now()
		var current model.RefreshToken
		err := tx.Where("token_hash = ? AND revoked = ? AND expires_at > ?", hashSecret(secret), false, now).
			First(&current).Error
		if isNotFound(err) {
			return apperror.New(apperror.KindInvalidCredential, "invalid refresh token")
		}
		if err != nil {
			return err
		}

		res := tx.Model(&model.RefreshToken{}).
			Where("id = ? AND revoked = ?", current.ID, false).
			Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return apperror.New(apperror.KindInvalidCredential, "invalid refresh token")
		}

		userID = current.UserID
		newSecret, err = m.IssueRefreshToken(ctx, tx, current.UserID)
		return err
	})
	if err != nil {
		return uuid.Nil, "", err
	}
	return userID, newSecret, nil
}

// RevokeRefreshToken marks the matching stored hash revoked. Unknown secrets are not an error.
func (m *Manager) RevokeRefreshToken(ctx context.Context, secret string) error {
	return m.db.WithContext(ctx).
		Model(&model.RefreshToken{}).
		Where("token_hash = ?", hashSecret(secret)).
		Update("revoked", true).Error
}

// RevokeAllRefreshTokens revokes every refresh token of userID.
func (m *Manager) RevokeAllRefreshTokens(ctx context.Context, db *gorm.DB, userID uuid.UUID) error {
	return m.conn(ctx, db).
		Model(&model.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}
