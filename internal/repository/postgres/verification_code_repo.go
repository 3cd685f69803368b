package postgres

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/verify-api/internal/domain/entity"
	apperrors "github.com/yourusername/verify-api/internal/pkg/errors"
)

// VerificationCodeRepo реализует repository.VerificationCodeRepository
type VerificationCodeRepo struct {
	db *gorm.DB
}

func NewVerificationCodeRepo(db *gorm.DB) *VerificationCodeRepo {
	return &VerificationCodeRepo{db: db}
}

func (r *VerificationCodeRepo) Create(code *entity.VerificationCode) error {
	return r.db.Create(code).Error
}

func (r *VerificationCodeRepo) GetActiveByUserID(userID uint) (*entity.VerificationCode, error) {
	var code entity.VerificationCode
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get active verification code: %w", err)
	}
	return &code, nil
}

// ReplaceForUser атомарно заменяет все коды пользователя новым кодом.
// Удаление и вставка выполняются в одной транзакции, чтобы параллельная
// валидация не увидела промежуточного состояния с двумя строками.
func (r *VerificationCodeRepo) ReplaceForUser(code *entity.VerificationCode) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", code.UserID).
			Delete(&entity.VerificationCode{}).Error; err != nil {
			return err
		}
		return tx.Create(code).Error
	})
}

// IncrementAttempts увеличивает счетчик попыток на стороне БД.
// Инкремент выражением attempts_used + 1 исключает потерю обновлений
// при гонке двух неудачных попыток.
func (r *VerificationCodeRepo) IncrementAttempts(id uint) error {
	return r.db.Model(&entity.VerificationCode{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts_used": gorm.Expr("attempts_used + 1"),
		}).Error
}

// Consume помечает пользователя верифицированным и удаляет строку кода
// в одной транзакции. Параллельная повторная валидация видит либо
// непотребленную строку, либо её отсутствие, но не половину перехода.
func (r *VerificationCodeRepo) Consume(userID, codeID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", codeID).Delete(&entity.VerificationCode{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Строку уже забрал параллельный вызов
			return apperrors.ErrNotFound
		}
		return tx.Model(&entity.User{}).
			Where("id = ?", userID).
			Updates(map[string]interface{}{
				"is_email_verified": true,
				"updated_at":        time.Now(),
			}).Error
	})
}

func (r *VerificationCodeRepo) DeleteByID(id uint) error {
	return r.db.Where("id = ?", id).Delete(&entity.VerificationCode{}).Error
}

func (r *VerificationCodeRepo) DeleteByUserID(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&entity.VerificationCode{}).Error
}

// DeleteExpired удаляет все истекшие коды и возвращает количество удаленных строк
func (r *VerificationCodeRepo) DeleteExpired(now time.Time) (int64, error) {
	result := r.db.Where("expires_at < ?", now).Delete(&entity.VerificationCode{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired verification codes: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *VerificationCodeRepo) CountActive(now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&entity.VerificationCode{}).
		Where("expires_at >= ?", now).
		Count(&count).Error
	return count, err
}

func (r *VerificationCodeRepo) CountExpired(now time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&entity.VerificationCode{}).
		Where("expires_at < ?", now).
		Count(&count).Error
	return count, err
}

func (r *VerificationCodeRepo) CountHighAttempts(threshold int) (int64, error) {
	var count int64
	err := r.db.Model(&entity.VerificationCode{}).
		Where("attempts_used >= ?", threshold).
		Count(&count).Error
	return count, err
}
