package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVerificationCode_IsExpired(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	code := VerificationCode{ExpiresAt: now.Add(10 * time.Minute)}

	assert.False(t, code.IsExpired(now))
	assert.False(t, code.IsExpired(now.Add(10*time.Minute)), "Ровно на границе код ещё действителен")
	assert.True(t, code.IsExpired(now.Add(10*time.Minute+time.Second)))
}

func TestVerificationCode_AttemptsExhausted(t *testing.T) {
	code := VerificationCode{AttemptsUsed: 4}
	assert.False(t, code.AttemptsExhausted(5))

	code.AttemptsUsed = 5
	assert.True(t, code.AttemptsExhausted(5))

	code.AttemptsUsed = 6
	assert.True(t, code.AttemptsExhausted(5))
}
