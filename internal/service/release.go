package service

import (
	"github.com/dieselnoi/course_go_server/internal/entitlement"
	"github.com/dieselnoi/course_go_server/internal/model"
)

// ResolveReleasePolicy 把课时的发布配置归一化为封闭的策略变体
// 免费试看优先级最高：即使同时配置了解锁日期也按试看处理；
// 未配置解锁日期的付费课时对订阅用户立即可用
func ResolveReleasePolicy(lesson *model.Lesson) entitlement.ReleasePolicy {
	if lesson.IsFreePreview {
		return entitlement.FreePreview()
	}
	if lesson.UnlockDate == nil {
		return entitlement.AlwaysAvailable()
	}
	return entitlement.ScheduledRelease(*lesson.UnlockDate)
}
