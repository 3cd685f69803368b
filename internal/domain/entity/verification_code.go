package entity

import "time"

// VerificationCode stores a single-use numeric code proving control of an
// email address. At most one row exists per user at any time; generation
// deletes prior rows before inserting a new one.
type VerificationCode struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	Code         string    `gorm:"size:6;not null" json:"-"`
	ExpiresAt    time.Time `gorm:"not null;index" json:"expires_at"`
	AttemptsUsed int       `gorm:"not null;default:0" json:"attempts_used"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (VerificationCode) TableName() string {
	return "verification_codes"
}

func (c *VerificationCode) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

func (c *VerificationCode) AttemptsExhausted(maxAttempts int) bool {
	return c.AttemptsUsed >= maxAttempts
}
