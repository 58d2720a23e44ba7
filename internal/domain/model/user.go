package model

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID           int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	FullName     string     `gorm:"type:varchar(255);not null" json:"full_name"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	Phone        string     `gorm:"type:varchar(50)" json:"phone"`
	Address      string     `gorm:"type:text" json:"address"`
	CompanyName  string     `gorm:"type:varchar(255)" json:"company_name"`
	Role         Role       `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`
	IsVerified   bool       `gorm:"not null;default:false" json:"is_verified"`
	TokenVersion int        `gorm:"not null;default:0" json:"token_version"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
