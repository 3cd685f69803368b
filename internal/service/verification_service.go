package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/yourusername/verify-api/internal/domain/entity"
	"github.com/yourusername/verify-api/internal/domain/repository"
	apperrors "github.com/yourusername/verify-api/internal/pkg/errors"
)

// Fixed verification policy. These are contract values, not tunables.
const (
	// CodeLength is the number of decimal digits in a verification code.
	CodeLength = 6

	// CodeTTL is how long a generated code stays valid.
	CodeTTL = 10 * time.Minute

	// MaxAttempts is the number of failed submissions a code survives.
	MaxAttempts = 5
)

const codeSpace = 1000000 // 10^CodeLength

// VerificationService owns the lifecycle of single-use email verification
// codes: issuance, validation, attempt accounting and expiry reaping. All
// state lives in the injected store so multiple instances stay consistent.
type VerificationService struct {
	userRepo repository.UserRepository
	codeRepo repository.VerificationCodeRepository

	// randSource feeds code generation; tests substitute a fixed reader.
	randSource io.Reader
	// now is the clock; tests substitute a frozen one.
	now func() time.Time
}

func NewVerificationService(
	userRepo repository.UserRepository,
	codeRepo repository.VerificationCodeRepository,
) (*VerificationService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if codeRepo == nil {
		return nil, fmt.Errorf("verification code repository is required")
	}
	return &VerificationService{
		userRepo:   userRepo,
		codeRepo:   codeRepo,
		randSource: rand.Reader,
		now:        time.Now,
	}, nil
}

// GenerateCode supersedes any existing code for the user and persists a
// fresh one. It returns the plaintext code for the caller to deliver; the
// service itself never sends email.
func (s *VerificationService) GenerateCode(ctx context.Context, userID uint) (string, error) {
	code, err := s.randomCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}

	record := &entity.VerificationCode{
		UserID:       userID,
		Code:         code,
		ExpiresAt:    s.now().Add(CodeTTL),
		AttemptsUsed: 0,
	}
	if err := s.codeRepo.ReplaceForUser(record); err != nil {
		return "", fmt.Errorf("failed to store verification code: %w", err)
	}

	return code, nil
}

// ValidateCode runs the verification state machine for a submitted code.
//
// It returns (true, nil) when the code matched and the user was marked
// verified, and (false, nil) when the code simply did not match. On a
// mismatch the caller decides whether to charge an attempt via
// IncrementAttempts; this method never mutates the counter itself. All
// other branches are terminal and return a typed *Error.
func (s *VerificationService) ValidateCode(ctx context.Context, email, submittedCode string) (bool, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, ErrUserNotFound
		}
		return false, fmt.Errorf("failed to look up user: %w", err)
	}
	if user.IsEmailVerified {
		return false, ErrAlreadyVerified
	}

	record, err := s.codeRepo.GetActiveByUserID(user.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, ErrCodeInvalid
		}
		return false, fmt.Errorf("failed to look up verification code: %w", err)
	}

	now := s.now()
	if record.IsExpired(now) {
		if err := s.codeRepo.DeleteByID(record.ID); err != nil {
			return false, fmt.Errorf("failed to delete expired verification code: %w", err)
		}
		return false, ErrCodeExpired
	}
	if record.AttemptsExhausted(MaxAttempts) {
		if err := s.codeRepo.DeleteByID(record.ID); err != nil {
			return false, fmt.Errorf("failed to delete exhausted verification code: %w", err)
		}
		return false, ErrTooManyAttempts
	}

	// Codes are stored and compared in plaintext, the short TTL and attempt
	// cap bound the exposure.
	if submittedCode == record.Code {
		if err := s.codeRepo.Consume(user.ID, record.ID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				// A concurrent validation consumed the row first.
				return false, ErrCodeInvalid
			}
			return false, fmt.Errorf("failed to consume verification code: %w", err)
		}
		log.Printf("[VerificationService] email verified for user %d", user.ID)
		return true, nil
	}

	return false, nil
}

// IncrementAttempts charges one failed attempt against the user's active
// code. A missing user or missing code is a silent no-op so that this path
// never discloses whether an account exists. The increment itself happens
// at the store level.
func (s *VerificationService) IncrementAttempts(ctx context.Context, email, submittedCode string) error {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	record, err := s.codeRepo.GetActiveByUserID(user.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up verification code: %w", err)
	}

	return s.codeRepo.IncrementAttempts(record.ID)
}

// GetUserActiveCode returns the user's current code row, or nil if none.
func (s *VerificationService) GetUserActiveCode(ctx context.Context, userID uint) (*entity.VerificationCode, error) {
	record, err := s.codeRepo.GetActiveByUserID(userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up verification code: %w", err)
	}
	return record, nil
}

// HasActiveCode reports whether the user currently holds a code row.
func (s *VerificationService) HasActiveCode(ctx context.Context, userID uint) (bool, error) {
	record, err := s.GetUserActiveCode(ctx, userID)
	if err != nil {
		return false, err
	}
	return record != nil, nil
}

// DeleteUserCodes removes every code row for the user, for example when the
// account itself is deleted. Supersession does not need it: GenerateCode
// replaces rows transactionally.
func (s *VerificationService) DeleteUserCodes(ctx context.Context, userID uint) error {
	return s.codeRepo.DeleteByUserID(userID)
}

// CleanupExpiredCodes reaps every expired code row in one bulk delete and
// returns how many were removed. Safe to run concurrently with generation
// and validation; a second run with nothing expired removes 0 rows.
func (s *VerificationService) CleanupExpiredCodes(ctx context.Context) (int64, error) {
	removed, err := s.codeRepo.DeleteExpired(s.now())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		log.Printf("[VerificationService] cleanup removed %d expired codes", removed)
	}
	return removed, nil
}

// randomCode draws a uniformly random value from the crypto source and
// reduces it modulo the code space, rendering a zero-padded 6-digit string.
func (s *VerificationService) randomCode() (string, error) {
	var buf [8]byte
	if _, err := io.ReadFull(s.randSource, buf[:]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint64(buf[:]) % codeSpace
	return fmt.Sprintf("%0*d", CodeLength, n), nil
}
