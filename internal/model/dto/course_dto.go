package dto

// CourseInfo 课程列表项
type CourseInfo struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Slug         string  `json:"slug"`
	Difficulty   string  `json:"difficulty"`
	Price        float64 `json:"price"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty"`
	LessonCount  int     `json:"lesson_count"`
}

// LessonInfo 课时列表项，附带当前用户视角的锁定状态
type LessonInfo struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	DurationMinutes int    `json:"duration_minutes"`
	Order           int    `json:"order"`
	IsFreePreview   bool   `json:"is_free_preview"`
	UnlockDate      string `json:"unlock_date,omitempty"` // 仅在未解锁时返回
	Accessible      bool   `json:"accessible"`
	LockReason      string `json:"lock_reason,omitempty"`
}

// CourseDetail 课程详情（含课时列表）
type CourseDetail struct {
	CourseInfo
	Lessons []*LessonInfo `json:"lessons"`
}
