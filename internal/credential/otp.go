package credential

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"jobportal-backend/internal/apperror"
	"jobportal-backend/internal/model"
)

const (
	otpDigits      = 6
	maxOTPAttempts = 5
)

// IssueEmailOTP creates a fresh numeric code for userID and invalidates every earlier one.
func (m *Manager) IssueEmailOTP(ctx context.Context, db *gorm.DB, userID uuid.UUID) (string, error) {
	code, err := generateNumericCode(otpDigits)
	if err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), m.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash code: %w", err)
	}

	err = m.conn(ctx, db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.EmailVerification{}).Error; err != nil {
			return err
		}
		return tx.Create(&model.EmailVerification{
			UserID:    userID,
			CodeHash:  string(hashed),
			ExpiresAt: m.now().Add(m.cfg.OTPTTL),
		}).Error
	})
	if err != nil {
		return "", fmt.Errorf("store code: %w", err)
	}
	return code, nil
}

// VerifyEmailOTP checks code against the single active code of userID.
// Every guess claims one of the code's attempts before it is compared, so concurrent
// guesses cannot exceed the limit.
func (m *Manager) VerifyEmailOTP(ctx context.Context, userID uuid.UUID, code string) error {
	invalid := apperror.New(apperror.KindInvalidCredential, "invalid or expired verification code")

	var v model.EmailVerification
	err := m.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").First(&v).Error
	if isNotFound(err) {
		return invalid
	}
	if err != nil {
		return err
	}

	claim := m.db.WithContext(ctx).Model(&model.EmailVerification{}).
		Where("id = ? AND attempts < ? AND expires_at > ?", v.ID, maxOTPAttempts, m.now()).
		Update("attempts", gorm.Expr("attempts + 1"))
	if claim.Error != nil {
		return claim.Error
	}
	if claim.RowsAffected == 0 {
		return invalid
	}

	if bcrypt.CompareHashAndPassword([]byte(v.CodeHash), []byte(strings.TrimSpace(code))) != nil {
		return invalid
	}
	return nil
}

// ClearEmailOTPs removes every code of userID.
func (m *Manager) ClearEmailOTPs(ctx context.Context, db *gorm.DB, userID uuid.UUID) error {
	return m.conn(ctx, db).Where("user_id = ?", userID).Delete(&model.EmailVerification{}).Error
}

func generateNumericCode(digits int) (string, error) {
	var b strings.Builder
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}
