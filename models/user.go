package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an admin account. Only the bcrypt hash is stored.
type User struct {
	ID        string    `gorm:"primaryKey;size:36;column:id" json:"id"`
	Email     string    `gorm:"size:255;uniqueIndex;not null;column:email" json:"email"`
	Password  string    `gorm:"size:100;not null;column:password" json:"-"`
	Role      string    `gorm:"size:20;not null;default:admin;column:role" json:"role"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	assignID(&u.ID)
	return nil
}

// SessionRole is the role carried in the session cookie: super-admin if stored so, admin otherwise.
func (u *User) SessionRole() string {
	if u.Role == RoleSuperAdmin {
		return RoleSuperAdmin
	}
	return RoleAdmin
}
