package models

import (
	"gorm.io/datatypes"
)

// Employee roles
const (
	RoleAdministrator = "administrator"
	RoleWaiter        = "waiter"
)

// Employee holds the staff data attached one-to-one to a User
type Employee struct {
	ID       uint           `gorm:"primaryKey" json:"id"`
	UserID   uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	User     *User          `json:"user,omitempty"`
	Role     string         `gorm:"size:20;not null" json:"role"`
	Phone    string         `gorm:"size:20" json:"phone"`
	HireDate datatypes.Date `json:"hire_date"`
}

// IsValidRole reports whether role is one of the known employee roles
func IsValidRole(role string) bool {
	return role == RoleAdministrator || role == RoleWaiter
}
