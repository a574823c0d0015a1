// Package credential issues, verifies and revokes every secret the portal hands out:
// password hashes, access tokens, refresh tokens, email one-time codes and password reset tokens.
package credential

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Config holds token lifetimes and the signing secret.
type Config struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	OTPTTL     time.Duration
	ResetTTL   time.Duration
	BcryptCost int
}

// Manager is safe for concurrent use. Stored credentials live in the database passed at construction;
// methods that take a *gorm.DB run against that handle so callers can include them in a transaction.
type Manager struct {
	cfg Config
	db  *gorm.DB
	now func() time.Time
}

// NewManager builds a Manager over db.
func NewManager(cfg Config, db *gorm.DB) *Manager {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.ResetTTL == 0 {
		cfg.ResetTTL = time.Hour
	}
	return &Manager{cfg: cfg, db: db, now: time.Now}
}

// HashPassword returns a salted bcrypt hash of plain.
func (m *Manager) HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), m.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// VerifyPassword reports whether plain matches hash.
func (m *Manager) VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

func newSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
