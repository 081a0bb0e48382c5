package dto

// SubscriptionInfo 订阅状态（只读投影）
type SubscriptionInfo struct {
	CourseID         int64  `json:"course_id"`
	CourseTitle      string `json:"course_title,omitempty"`
	Status           string `json:"status"`
	StartDate        string `json:"start_date"`
	CurrentPeriodEnd string `json:"current_period_end,omitempty"`
}
