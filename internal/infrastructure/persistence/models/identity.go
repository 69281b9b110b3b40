package models

import (
	"time"

	"github.com/brandlens/backend/internal/domain/billing"
	"github.com/brandlens/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	BaseModel
	Email        string              `gorm:"type:varchar(254);not null;uniqueIndex"`
	PasswordHash string              `gorm:"type:varchar(255);not null"`
	Name         string              `gorm:"type:varchar(200)"`
	Plan         string              `gorm:"type:varchar(20);not null;default:'free'"`
	Status       identity.UserStatus `gorm:"type:varchar(20);not null;default:'active'"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseEntity:   m.BaseModel.ToDomain(),
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Name:         m.Name,
		Plan:         billing.ParseTier(m.Plan),
		Status:       m.Status,
		LastLoginAt:  m.LastLoginAt,
	}
}

// UserModelFromDomain builds a persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
		Plan:         u.Plan.String(),
		Status:       u.Status,
		LastLoginAt:  u.LastLoginAt,
	}
	m.FromDomainBaseEntity(u.BaseEntity)
	return m
}
