package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type OperatorRole string

const (
	RoleAdmin   OperatorRole = "admin"
	RolePicker  OperatorRole = "picker"
	RoleChecker OperatorRole = "checker"
	RolePacker  OperatorRole = "packer"
)

// User represents a warehouse operator (picker, checker, packer) or an admin
type User struct {
	BaseModel
	Email        string       `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Password     string       `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	FullName     string       `gorm:"type:varchar(255)" json:"full_name" validate:"required"`
	Role         OperatorRole `gorm:"type:varchar(20);not null;default:'picker'" json:"role" validate:"required,oneof=admin picker checker packer"`
	IsActive     bool         `gorm:"default:true" json:"is_active"`
	TokenVersion string       `gorm:"type:varchar(255);default:''" json:"-"` // For single session enforcement
	LastSeenAt   *time.Time   `json:"last_seen_at,omitempty"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID         uuid.UUID    `json:"id"`
	Email      string       `json:"email"`
	FullName   string       `json:"full_name"`
	Role       OperatorRole `json:"role"`
	IsActive   bool         `json:"is_active"`
	LastSeenAt *time.Time   `json:"last_seen_at,omitempty"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		Role:       u.Role,
		IsActive:   u.IsActive,
		LastSeenAt: u.LastSeenAt,
	}
}
