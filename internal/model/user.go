package model

import (
	"time"
)

type User struct {
	BaseModel
	Public
	Name      string     `gorm:"size:100;not null" json:"name"`
	Username  string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email     string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"size:100;not null" json:"-"`
	IsAdmin   bool       `gorm:"not null;default:false" json:"is_admin"`
	ShowName  bool       `gorm:"not null;default:false" json:"show_name"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func (User) TableName() string {
	return "users"
}
