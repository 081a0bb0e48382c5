// Package cron 进程内定时任务
package cron

import (
	"log"
	"time"
)

// SubscriptionSweeper 订阅清扫，把周期已过的订阅标记为失效
type SubscriptionSweeper interface {
	ExpireLapsed(now time.Time) (int64, error)
}

type Service struct {
	sweeper  SubscriptionSweeper
	interval time.Duration
	stopChan chan struct{}
}

func NewService(sweeper SubscriptionSweeper, interval time.Duration) *Service {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Service{
		sweeper:  sweeper,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start 启动定时任务
func (s *Service) Start() {
	go s.runSubscriptionSweep()
	log.Println("定时任务已启动（订阅清扫）")
}

// Stop 停止定时任务
func (s *Service) Stop() {
	close(s.stopChan)
	log.Println("定时任务已停止")
}

// runSubscriptionSweep 按固定间隔清扫过期订阅
// 这是计费 webhook 丢失时的兜底：播放准入只看库里的订阅状态，
// webhook 丢失时清扫把周期已过的行翻转为 cancelled，准入随之关闭
func (s *Service) runSubscriptionSweep() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Service) sweep() {
	affected, err := s.sweeper.ExpireLapsed(time.Now())
	if err != nil {
		log.Printf("订阅清扫失败: %v", err)
		return
	}
	if affected > 0 {
		log.Printf("订阅清扫完成，标记过期订阅 %d 条", affected)
	}
}
