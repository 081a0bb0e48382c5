package model

import (
	"time"
)

type Lesson struct {
	ID              int64      `gorm:"primaryKey" json:"id"`
	CourseID        int64      `gorm:"not null;index;uniqueIndex:uk_course_order" json:"course_id"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	VideoURL        *string    `gorm:"size:500" json:"-"`                                // 旧版视频地址（非 Mux 视频）
	MuxAssetID      *string    `gorm:"column:mux_asset_id;size:255" json:"-"`            // Mux Asset ID
	MuxPlaybackID   *string    `gorm:"column:mux_playback_id;size:255" json:"-"`         // Mux Playback ID
	DurationMinutes int        `gorm:"default:0" json:"duration_minutes"`
	Order           int        `gorm:"column:sort_order;default:0;uniqueIndex:uk_course_order" json:"order"`
	IsFreePreview   bool       `gorm:"default:false" json:"is_free_preview"` // 免费试看，无视订阅状态
	UnlockDate      *time.Time `gorm:"index" json:"unlock_date,omitempty"`   // 定时解锁日期，null 表示立即可用
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// AssetRef 返回播放凭证签名用的资源引用
// 优先使用 Mux Playback ID，旧视频回退到原始 URL
func (l *Lesson) AssetRef() string {
	if l.MuxPlaybackID != nil && *l.MuxPlaybackID != "" {
		return *l.MuxPlaybackID
	}
	if l.VideoURL != nil {
		return *l.VideoURL
	}
	return ""
}
