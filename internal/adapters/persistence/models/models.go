package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents the users table. Role and Department together determine
// the maximal retrieval filter for this principal and are always read from
// this row, never from the request.
type User struct {
	ID                  string         `gorm:"primaryKey;size:36" json:"id"`
	Username            string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email               string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	FullName            string         `gorm:"size:100;not null" json:"full_name"`
	PasswordHash        string         `gorm:"size:255;not null" json:"-"`
	Role                string         `gorm:"size:20;default:'employee'" json:"role"`
	Department          *string        `gorm:"size:100" json:"department"`
	IsActive            bool           `gorm:"default:true" json:"is_active"`
	CreatedAt           time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	LastLogin           *time.Time     `json:"last_login"`
	FailedLoginAttempts int            `gorm:"default:0" json:"-"`
	LockedUntil         *time.Time     `json:"-"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// IsLocked reports whether the account is locked at the given instant.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// DepartmentName returns the department or "" when unset.
func (u *User) DepartmentName() string {
	if u.Department == nil {
		return ""
	}
	return *u.Department
}

// UserResponse DTO, shaped for the frontend's auth payload
type UserResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	EmployeeID string `json:"employeeId"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:         u.ID,
		Name:       u.FullName,
		EmployeeID: u.Username,
		Role:       u.Role,
		Department: u.DepartmentName(),
	}
}

// AutoMigrate migrates all persistence models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{})
}
