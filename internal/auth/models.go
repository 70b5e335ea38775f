package auth

import (
	"time"

	"github.com/google/uuid"
)

// Role is one of the portal's three actor roles.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleRHUStaff    Role = "rhu_staff"
	RoleBeneficiary Role = "beneficiary"
)

// User is a portal account.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	FullName     string    `json:"full_name"`
	Role         Role      `json:"role" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
