package entity

import "time"

// User представляет запись справочника пользователей.
// Сервис верификации читает её и выставляет is_email_verified,
// остальные поля принадлежат внешнему сервису аккаунтов.
type User struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Email           string    `gorm:"size:100;not null;uniqueIndex" json:"email"`
	IsEmailVerified bool      `gorm:"not null;default:false" json:"is_email_verified"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (User) TableName() string {
	return "users"
}
