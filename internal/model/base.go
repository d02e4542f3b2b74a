package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel is the soft-deletable row header.
type BaseModel struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Record is the header for rows that are removed for real (hints, media) or
// never removed at all.
type Record struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Public carries the UUID exposed to clients in place of the numeric key.
type Public struct {
	UUID string `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
}

func (p *Public) BeforeCreate(tx *gorm.DB) (err error) {
	if p.UUID == "" {
		p.UUID = GenerateUUID()
	}
	return
}

func GenerateUUID() string {
	return uuid.New().String()
}
