// Package adapters provides the user repository implementations of the account feature.
package adapters

import (
	"time"

	"account_backend/internal/feature/account/domain/entity"
)

// UserModel is the GORM model for the users table.
// ID holds an ObjectID hex string so that ids look the same on every store.
type UserModel struct {
	ID        string    `gorm:"primaryKey;size:24"`
	Name      string    `gorm:"size:30;not null"`
	Email     string    `gorm:"uniqueIndex;size:255;not null"`
	Password  string    `gorm:"size:255;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// ToEntity converts the GORM model to a domain entity.
func (m *UserModel) ToEntity() *entity.User {
	return &entity.User{
		ID:       m.ID,
		Name:     m.Name,
		Email:    m.Email,
		Password: m.Password,
	}
}

// UserModelFromEntity converts a domain entity to a GORM model.
func UserModelFromEntity(u *entity.User) *UserModel {
	return &UserModel{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Password: u.Password,
	}
}
