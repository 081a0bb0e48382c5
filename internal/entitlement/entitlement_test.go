package entitlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	now        = time.Date(2025, 2, 20, 10, 30, 0, 0, time.UTC)
	futureDate = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	pastDate   = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
)

func sub(status Status) SubscriptionState {
	return SubscriptionState{Status: status, CurrentPeriodEnd: now.Add(30 * 24 * time.Hour)}
}

func TestDecide_FreePreview(t *testing.T) {
	// 免费试看无条件放行，无视订阅状态、解锁日期和手动解锁
	statuses := []Status{StatusActive, StatusTrialing, StatusPastDue, StatusCancelled, StatusNone}

	for _, status := range statuses {
		t.Run(string(status), func(t *testing.T) {
			d := Decide(sub(status), FreePreview(), false, now, time.UTC)
			assert.Equal(t, Decision{Allowed: true, Reason: ReasonFreePreview}, d)

			// 带手动解锁也不改变理由码
			d = Decide(sub(status), FreePreview(), true, now, time.UTC)
			assert.Equal(t, Decision{Allowed: true, Reason: ReasonFreePreview}, d)
		})
	}
}

func TestDecide_ActiveSubscription(t *testing.T) {
	t.Run("always available lesson", func(t *testing.T) {
		d := Decide(sub(StatusActive), AlwaysAvailable(), false, now, time.UTC)
		assert.Equal(t, Decision{Allowed: true, Reason: ReasonActiveSubscription}, d)
	})

	t.Run("trialing counts as active", func(t *testing.T) {
		d := Decide(sub(StatusTrialing), AlwaysAvailable(), false, now, time.UTC)
		assert.Equal(t, Decision{Allowed: true, Reason: ReasonActiveSubscription}, d)
	})

	t.Run("released scheduled lesson", func(t *testing.T) {
		d := Decide(sub(StatusActive), ScheduledRelease(pastDate), false, now, time.UTC)
		assert.Equal(t, Decision{Allowed: true, Reason: ReasonActiveSubscription}, d)
	})

	t.Run("unlock date equals today", func(t *testing.T) {
		// 日历日粒度：解锁当天即已解锁，哪怕 now 的时分秒早于解锁时刻
		sameDay := time.Date(2025, 2, 20, 23, 59, 0, 0, time.UTC)
		d := Decide(sub(StatusActive), ScheduledRelease(sameDay), false, now, time.UTC)
		assert.Equal(t, Decision{Allowed: true, Reason: ReasonActiveSubscription}, d)
	})
}

func TestDecide_NotYetReleased(t *testing.T) {
	d := Decide(sub(StatusActive), ScheduledRelease(futureDate), false, now, time.UTC)
	assert.Equal(t, Decision{Allowed: false, Reason: ReasonNotYetReleased}, d)

	// 同样的输入加上手动解锁，结果翻转为放行
	d = Decide(sub(StatusActive), ScheduledRelease(futureDate), true, now, time.UTC)
	assert.Equal(t, Decision{Allowed: true, Reason: ReasonManualOverride}, d)
}

func TestDecide_ManualOverride_RequiresActiveSubscription(t *testing.T) {
	// 手动解锁只能解除时间门槛，不能替代缺失或失效的订阅
	for _, status := range []Status{StatusPastDue, StatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			d := Decide(sub(status), ScheduledRelease(futureDate), true, now, time.UTC)
			assert.Equal(t, Decision{Allowed: false, Reason: ReasonSubscriptionLapsed}, d)
		})
	}

	t.Run("none", func(t *testing.T) {
		d := Decide(sub(StatusNone), ScheduledRelease(futureDate), true, now, time.UTC)
		assert.Equal(t, Decision{Allowed: false, Reason: ReasonNoSubscription}, d)
	})
}

func TestDecide_SubscriptionLapsed(t *testing.T) {
	// past_due 和 cancelled 一视同仁；宽限期是计费侧上报状态时的选择
	for _, status := range []Status{StatusPastDue, StatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			for _, policy := range []ReleasePolicy{AlwaysAvailable(), ScheduledRelease(pastDate), ScheduledRelease(futureDate)} {
				d := Decide(sub(status), policy, false, now, time.UTC)
				assert.Equal(t, Decision{Allowed: false, Reason: ReasonSubscriptionLapsed}, d)
			}
		})
	}
}

func TestDecide_NoSubscription(t *testing.T) {
	d := Decide(sub(StatusNone), AlwaysAvailable(), false, now, time.UTC)
	assert.Equal(t, Decision{Allowed: false, Reason: ReasonNoSubscription}, d)

	d = Decide(sub(StatusNone), ScheduledRelease(pastDate), false, now, time.UTC)
	assert.Equal(t, Decision{Allowed: false, Reason: ReasonNoSubscription}, d)
}

func TestDecide_Deterministic(t *testing.T) {
	// 相同输入连续调用结果逐字节一致
	first := Decide(sub(StatusActive), ScheduledRelease(futureDate), false, now, time.UTC)
	second := Decide(sub(StatusActive), ScheduledRelease(futureDate), false, now, time.UTC)
	assert.Equal(t, first, second)
}

func TestDecide_ReferenceTimezone(t *testing.T) {
	bangkok := time.FixedZone("ICT", 7*3600)

	// UTC 2025-02-28 18:00 在曼谷已是 3 月 1 日
	eve := time.Date(2025, 2, 28, 18, 0, 0, 0, time.UTC)
	unlock := time.Date(2025, 3, 1, 0, 0, 0, 0, bangkok)

	t.Run("unlocked in reference timezone", func(t *testing.T) {
		d := Decide(sub(StatusActive), ScheduledRelease(unlock), false, eve, bangkok)
		assert.True(t, d.Allowed)
		assert.Equal(t, ReasonActiveSubscription, d.Reason)
	})

	t.Run("still locked in UTC", func(t *testing.T) {
		d := Decide(sub(StatusActive), ScheduledRelease(unlock), false, eve, time.UTC)
		assert.Equal(t, Decision{Allowed: false, Reason: ReasonNotYetReleased}, d)
	})

	t.Run("nil location falls back to UTC", func(t *testing.T) {
		d := Decide(sub(StatusActive), ScheduledRelease(unlock), false, eve, nil)
		assert.False(t, d.Allowed)
	})
}

func TestDecide_PausedIntervalsDoNotShiftUnlock(t *testing.T) {
	// 暂停订阅不顺延解锁日期：解锁日是固定日历日
	resume := now.Add(-24 * time.Hour)
	s := SubscriptionState{
		Status: StatusActive,
		PausedIntervals: []PausedInterval{
			{PauseStart: now.Add(-10 * 24 * time.Hour), ResumeStart: &resume},
		},
	}

	d := Decide(s, ScheduledRelease(pastDate), false, now, time.UTC)
	assert.Equal(t, Decision{Allowed: true, Reason: ReasonActiveSubscription}, d)

	d = Decide(s, ScheduledRelease(futureDate), false, now, time.UTC)
	assert.Equal(t, Decision{Allowed: false, Reason: ReasonNotYetReleased}, d)
}

func TestDecide_UnknownStatusPanics(t *testing.T) {
	require.Panics(t, func() {
		Decide(SubscriptionState{Status: "suspended"}, AlwaysAvailable(), false, now, time.UTC)
	})
}

func TestDecide_UnknownPolicyKindPanics(t *testing.T) {
	require.Panics(t, func() {
		Decide(sub(StatusActive), ReleasePolicy{kind: "windowed"}, false, now, time.UTC)
	})
}

func TestReleasePolicy_UnlockDate(t *testing.T) {
	_, ok := AlwaysAvailable().UnlockDate()
	assert.False(t, ok)

	_, ok = FreePreview().UnlockDate()
	assert.False(t, ok)

	d, ok := ScheduledRelease(futureDate).UnlockDate()
	assert.True(t, ok)
	assert.Equal(t, futureDate, d)
}
