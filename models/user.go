package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// RoleUser is granted to every registered account.
	RoleUser = "user"
	// RoleAdmin may list users and edit their roles.
	RoleAdmin = "admin"
)

// AvailableRoles lists the roles the admin editor can assign.
var AvailableRoles = []string{RoleUser, RoleAdmin}

// User is an account of the dashboard.
type User struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	Email      string    `json:"email" gorm:"uniqueIndex;size:100;not null"`
	Password   string    `json:"-" gorm:"size:255;not null"`
	FirstName  string    `json:"firstName" gorm:"size:100"`
	LastName   string    `json:"lastName" gorm:"size:100"`
	Roles      []string  `json:"roles" gorm:"type:varchar(255);serializer:json"`
	Phone      *string   `json:"phone,omitempty" gorm:"size:30"`
	Address    *string   `json:"address,omitempty" gorm:"size:255"`
	BirthDate  *string   `json:"birthDate,omitempty" gorm:"size:10"` // YYYY-MM-DD
	PictureURL *string   `json:"pictureUrl,omitempty" gorm:"size:255"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// TableName sets the table name.
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns a uuid and the default role.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if len(u.Roles) == 0 {
		u.Roles = []string{RoleUser}
	}
	return nil
}

// HasRole reports whether the user holds role.
func (u *User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// IsValidRole reports whether role can be assigned.
func IsValidRole(role string) bool {
	return slices.Contains(AvailableRoles, role)
}
