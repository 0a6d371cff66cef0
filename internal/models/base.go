package models

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel holds the columns shared by every table: auto-incrementing
// id, create/update timestamps and a soft-delete marker.
type BaseModel struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
