package model

import (
	"time"
)

type Course struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	Slug         string    `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Difficulty   string    `gorm:"size:20;default:beginner" json:"difficulty"` // beginner, intermediate, advanced
	Price        float64   `gorm:"type:decimal(10,2)" json:"price"`            // 月订阅价格（美元）
	ThumbnailURL string    `gorm:"size:500" json:"thumbnail_url"`
	IsPublished  bool      `gorm:"default:false;index" json:"is_published"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Course) TableName() string {
	return "courses"
}
