package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/yourusername/verify-api/internal/domain/repository"
	apperrors "github.com/yourusername/verify-api/internal/pkg/errors"
)

// SignupVerificationService is the caller-side flow around the verification
// core: it issues codes and hands them to the delivery collaborator, and on
// confirmation it performs the explicit attempt-charging step after a
// mismatch.
type SignupVerificationService struct {
	verification *VerificationService
	userRepo     repository.UserRepository
	emailService EmailService
}

func NewSignupVerificationService(
	verification *VerificationService,
	userRepo repository.UserRepository,
	emailService EmailService,
) (*SignupVerificationService, error) {
	if verification == nil {
		return nil, fmt.Errorf("verification service is required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if emailService == nil {
		return nil, fmt.Errorf("email service is required")
	}
	return &SignupVerificationService{
		verification: verification,
		userRepo:     userRepo,
		emailService: emailService,
	}, nil
}

// SendCode generates a fresh code for the user, superseding any prior one,
// and emails it. Sending to an already verified user is a no-op.
func (s *SignupVerificationService) SendCode(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user.IsEmailVerified {
		return nil
	}

	code, err := s.verification.GenerateCode(ctx, user.ID)
	if err != nil {
		return err
	}

	// Stable per generated code, so provider-side retries do not send twice.
	idempotencyKey := fmt.Sprintf("email-verify:%d:%s", user.ID, code)
	if err := s.emailService.SendVerificationCode(ctx, user.Email, code, idempotencyKey); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	return nil
}

// ConfirmEmail validates a submitted code. A mismatch charges one attempt
// against the active code (the two-step contract of the core) and surfaces
// as ErrCodeInvalid; the increment and the comparison are therefore not
// atomic with each other.
func (s *SignupVerificationService) ConfirmEmail(ctx context.Context, email, code string) error {
	ok, err := s.verification.ValidateCode(ctx, email, code)
	if err != nil {
		return err
	}
	if !ok {
		if incErr := s.verification.IncrementAttempts(ctx, email, code); incErr != nil {
			return fmt.Errorf("failed to record verification attempt: %w", incErr)
		}
		return ErrCodeInvalid
	}
	return nil
}
