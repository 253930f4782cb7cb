package domain

import "time"

// Roles a user can hold.
const (
	RoleDoctor        = "doctor"
	RoleDataScientist = "data_scientist"
)

// ValidRole reports whether role is one the application knows.
func ValidRole(role string) bool {
	return role == RoleDoctor || role == RoleDataScientist
}

// User maps the users table.
type User struct {
	ID           uint      `gorm:"column:id;primaryKey"`
	Username     string    `gorm:"column:username;size:80;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password;size:200;not null"` // bcrypt
	Role         string    `gorm:"column:role;size:20;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (User) TableName() string { return "users" }
