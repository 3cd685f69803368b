package repository

import (
	"time"

	"github.com/yourusername/verify-api/internal/domain/entity"
)

// VerificationCodeRepository persists single-use email verification codes.
type VerificationCodeRepository interface {
	Create(code *entity.VerificationCode) error

	// GetActiveByUserID returns the user's current code row or ErrNotFound.
	// "Active" means present; expiry and attempt checks belong to the service.
	GetActiveByUserID(userID uint) (*entity.VerificationCode, error)

	// ReplaceForUser deletes all code rows for code.UserID and inserts the new
	// row in one transaction, so a user never transiently holds two codes.
	ReplaceForUser(code *entity.VerificationCode) error

	// IncrementAttempts applies attempts_used = attempts_used + 1 at the store
	// level. Never read-modify-write: two racing failed submissions must not
	// lose an increment.
	IncrementAttempts(id uint) error

	// Consume marks the owning user as verified and deletes the code row in
	// one transaction.
	Consume(userID, codeID uint) error

	DeleteByID(id uint) error
	DeleteByUserID(userID uint) error

	// DeleteExpired removes every row with expires_at < now and returns the
	// number of rows removed.
	DeleteExpired(now time.Time) (int64, error)

	CountActive(now time.Time) (int64, error)
	CountExpired(now time.Time) (int64, error)
	CountHighAttempts(threshold int) (int64, error)
}
