package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/dieselnoi/course_go_server/config"
	"github.com/dieselnoi/course_go_server/internal/database"
	"github.com/dieselnoi/course_go_server/internal/model"
	"github.com/dieselnoi/course_go_server/internal/repository"
)

var dryRun = flag.Bool("dry-run", true, "只统计不写库")

// 订阅清扫 CLI：把周期已过的 active/trialing 订阅标记为 cancelled
// 服务内有同样的定时兜底，这个命令用于运维手工触发和核对
func main() {
	flag.Parse()

	log.Println("Starting subscription sweep...")
	log.Printf("Mode: dry-run=%v", *dryRun)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	now := time.Now()

	if *dryRun {
		var count int64
		err := db.Model(&model.Subscription{}).
			Where("status IN ?", []string{model.SubscriptionStatusActive, model.SubscriptionStatusTrialing}).
			Where("current_period_end IS NOT NULL AND current_period_end < ?", now).
			Count(&count).Error
		if err != nil {
			log.Fatalf("Failed to count lapsed subscriptions: %v", err)
		}
		log.Printf("[dry-run] Would mark %d subscription(s) as cancelled", count)
		return
	}

	affected, err := repository.NewSubscriptionRepository(db).ExpireLapsed(now)
	if err != nil {
		log.Fatalf("Sweep failed: %v", err)
	}
	log.Printf("Sweep complete, marked %d subscription(s) as cancelled", affected)
}
