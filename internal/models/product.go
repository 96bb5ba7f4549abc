package models

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a product managed from the admin panel.
// Price is stored in minor currency units (cents).
type Product struct {
	ID         string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name       string         `json:"name" gorm:"uniqueIndex;type:varchar(255);not null"`
	Price      int64          `json:"price" gorm:"not null"`
	Status     Status         `json:"status" gorm:"type:varchar(32);index"`
	CategoryID *string        `json:"category_id" gorm:"type:varchar(36);index"`
	Category   *Category      `json:"category,omitempty"`
	Tags       []Tag          `json:"tags,omitempty" gorm:"many2many:product_tag;"`
	CreatedAt  time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}
