package repository

import (
	"github.com/yourusername/verify-api/internal/domain/entity"
)

// UserRepository определяет методы для работы со справочником пользователей
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	// MarkEmailVerified выставляет is_email_verified=true для пользователя
	MarkEmailVerified(userID uint) error
}
