// Package entitlement 实现课时播放的准入判定
// 纯函数、无 I/O，订阅状态 / 发布策略 / 手动解锁三路输入在这里汇合
package entitlement

import (
	"fmt"
	"time"
)

// Status 订阅状态投影（计费模块为事实来源，这里只读）
type Status string

const (
	StatusActive    Status = "active"
	StatusTrialing  Status = "trialing"
	StatusPastDue   Status = "past_due"
	StatusCancelled Status = "cancelled"
	StatusNone      Status = "none" // 用户从未订阅该课程
)

// PausedInterval 订阅暂停区间，ResumeStart 为 nil 表示仍在暂停中
// 区间按时间升序且互不重叠。只用于统计，不参与准入判定
type PausedInterval struct {
	PauseStart  time.Time  `json:"pause_start"`
	ResumeStart *time.Time `json:"resume_start,omitempty"`
}

// SubscriptionState 单个 (用户, 课程) 的订阅状态快照
type SubscriptionState struct {
	Status           Status
	CurrentPeriodEnd time.Time
	PausedIntervals  []PausedInterval
}

// PolicyKind 发布策略变体标签
type PolicyKind string

const (
	// KindFreePreview 免费试看：无条件放行，作为营销漏斗对无订阅用户开放
	KindFreePreview PolicyKind = "free_preview"
	// KindAlwaysAvailable 未配置解锁日期：无时间门槛，但仍受订阅门槛约束
	KindAlwaysAvailable PolicyKind = "always_available"
	// KindScheduledRelease 定时解锁：到达解锁日期前对订阅用户也不可见
	KindScheduledRelease PolicyKind = "scheduled_release"
)

// ReleasePolicy 课时发布策略（封闭变体集合，而非可空日期字段）
// 免费试看无条件压过解锁日期，哪怕两者同时配置
type ReleasePolicy struct {
	kind       PolicyKind
	unlockDate time.Time
}

func FreePreview() ReleasePolicy {
	return ReleasePolicy{kind: KindFreePreview}
}

func AlwaysAvailable() ReleasePolicy {
	return ReleasePolicy{kind: KindAlwaysAvailable}
}

func ScheduledRelease(unlockDate time.Time) ReleasePolicy {
	return ReleasePolicy{kind: KindScheduledRelease, unlockDate: unlockDate}
}

func (p ReleasePolicy) Kind() PolicyKind {
	return p.kind
}

// UnlockDate 返回解锁日期，仅 KindScheduledRelease 有意义
func (p ReleasePolicy) UnlockDate() (time.Time, bool) {
	return p.unlockDate, p.kind == KindScheduledRelease
}

// Reason 判定理由码，每个判定结果有且仅有一个
type Reason string

const (
	ReasonFreePreview        Reason = "free_preview"
	ReasonActiveSubscription Reason = "active_subscription"
	ReasonManualOverride     Reason = "manual_override"
	ReasonNoSubscription     Reason = "no_subscription"
	ReasonNotYetReleased     Reason = "not_yet_released"
	ReasonSubscriptionLapsed Reason = "subscription_lapsed"
)

// Decision 准入判定结果
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason"`
}

// Decide 按固定优先级合成单一判定，前面的规则命中后不再评估后面的规则：
//  1. 免费试看 → 放行（无视订阅）
//  2. active/trialing 且（无时间门槛或已到解锁日）→ 放行
//  3. active/trialing 且未到解锁日但有手动解锁 → 放行
//  4. active/trialing 且未到解锁日 → 拒绝 not_yet_released
//  5. past_due/cancelled → 拒绝 subscription_lapsed（手动解锁救不回来）
//  6. 其余（none）→ 拒绝 no_subscription
//
// 解锁日期按日历日比较（非瞬时），统一使用 loc 时区，解锁当天即视为已解锁。
// 未知的状态或策略变体属于编程错误，直接 panic：静默拒绝会掩盖集成
// 问题，静默放行则是安全漏洞
func Decide(sub SubscriptionState, policy ReleasePolicy, manualUnlock bool, now time.Time, loc *time.Location) Decision {
	if policy.kind == KindFreePreview {
		return Decision{Allowed: true, Reason: ReasonFreePreview}
	}

	switch sub.Status {
	case StatusActive, StatusTrialing:
		switch policy.kind {
		case KindAlwaysAvailable:
			return Decision{Allowed: true, Reason: ReasonActiveSubscription}
		case KindScheduledRelease:
			if released(now, policy.unlockDate, loc) {
				return Decision{Allowed: true, Reason: ReasonActiveSubscription}
			}
			if manualUnlock {
				return Decision{Allowed: true, Reason: ReasonManualOverride}
			}
			return Decision{Allowed: false, Reason: ReasonNotYetReleased}
		default:
			panic(fmt.Sprintf("entitlement: unknown release policy kind %q", policy.kind))
		}
	case StatusPastDue, StatusCancelled:
		return Decision{Allowed: false, Reason: ReasonSubscriptionLapsed}
	case StatusNone:
		return Decision{Allowed: false, Reason: ReasonNoSubscription}
	default:
		panic(fmt.Sprintf("entitlement: unknown subscription status %q", sub.Status))
	}
}

// released 按日历日比较：now 所在日期 >= 解锁日期即已解锁
// 统一时区比较，避免解锁当天不同用户时区下忽锁忽开
func released(now, unlockDate time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	ny, nm, nd := now.In(loc).Date()
	uy, um, ud := unlockDate.In(loc).Date()
	if ny != uy {
		return ny > uy
	}
	if nm != um {
		return nm > um
	}
	return nd >= ud
}
