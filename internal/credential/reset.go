package credential

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"jobportal-backend/internal/apperror"
	"jobportal-backend/internal/model"
)

// IssuePasswordResetToken creates a single-use reset secret for userID.
// Outstanding reset tokens of the user are revoked first.
func (m *Manager) IssuePasswordResetToken(ctx context.Context, db *gorm.DB, userID uuid.UUID) (string, error) {
	secret, err := newSecret()
	if err != nil {
		return "", err
	}

	err = m.conn(ctx, db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.PasswordResetToken{}).
			Where("user_id = ? AND revoked = ?", userID, false).
			Update("revoked", true).Error; err != nil {
			return err
		}
		return tx.Create(&model.PasswordResetToken{
			UserID:    userID,
			TokenHash: hashSecret(secret),
			ExpiresAt: m.now().Add(m.cfg.ResetTTL),
		}).Error
	})
	if err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}
	return secret, nil
}

// ConsumePasswordResetToken marks the secret used and returns its owner.
// Run it on the transaction that changes the password so both commit together.
func (m *Manager) ConsumePasswordResetToken(ctx context.Context, tx *gorm.DB, secret string) (uuid.UUID, error) {
	invalid := apperror.New(apperror.KindInvalidOrExpiredToken, "invalid or expired reset token")
	db := m.conn(ctx, tx)

	var row model.PasswordResetToken
	err := db.Where("token_hash = ?", hashSecret(secret)).First(&row).Error
	if isNotFound(err) {
		return uuid.Nil, invalid
	}
	if err != nil {
		return uuid.Nil, err
	}

	res := db.Model(&model.PasswordResetToken{}).
		Where("id = ? AND revoked = ? AND expires_at > ?", row.ID, false, m.now()).
		Update("revoked", true)
	if res.Error != nil {
		return uuid.Nil, res.Error
	}
	if res.RowsAffected != 1 {
		return uuid.Nil, invalid
	}
	return row.UserID, nil
}
