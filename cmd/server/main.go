package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dieselnoi/course_go_server/config"
	"github.com/dieselnoi/course_go_server/internal/api"
	"github.com/dieselnoi/course_go_server/internal/api/handler"
	"github.com/dieselnoi/course_go_server/internal/database"
	"github.com/dieselnoi/course_go_server/internal/pkg/cache"
	"github.com/dieselnoi/course_go_server/internal/pkg/cron"
	"github.com/dieselnoi/course_go_server/internal/pkg/oauth"
	"github.com/dieselnoi/course_go_server/internal/pkg/oss"
	"github.com/dieselnoi/course_go_server/internal/pkg/playback"
	"github.com/dieselnoi/course_go_server/internal/pkg/pubsub"
	"github.com/dieselnoi/course_go_server/internal/pkg/queue"
	"github.com/dieselnoi/course_go_server/internal/pkg/ws"
	"github.com/dieselnoi/course_go_server/internal/repository"
	"github.com/dieselnoi/course_go_server/internal/service"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}
	log.Println("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	log.Println("Redis connected")

	// 解锁日期比较用的统一时区
	releaseLoc, err := time.LoadLocation(cfg.Playback.ReleaseTimezone)
	if err != nil {
		log.Fatalf("Invalid release timezone %q: %v", cfg.Playback.ReleaseTimezone, err)
	}

	// 初始化 OSS（可选）
	var ossClient *oss.Client
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err = oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Printf("Warning: Failed to init OSS client: %v", err)
		} else {
			log.Println("OSS client initialized")
		}
	}

	// 初始化 WebSocket Hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// 订阅解锁事件，推送给在线用户
	subscriber := pubsub.NewSubscriber(rdb)
	err = subscriber.SubscribeUnlocks(context.Background(), func(msg *pubsub.UnlockMessage) {
		if err := wsHub.SendToUser(msg.UserID, &ws.Message{
			Type: msg.Type,
			Data: msg,
		}); err != nil {
			log.Printf("推送解锁事件失败 user=%d: %v", msg.UserID, err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to subscribe unlock events: %v", err)
	}

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	unlockRepo := repository.NewLessonUnlockRepository(db)

	// 初始化 Service
	emailQueue := queue.NewQueue(rdb, cfg.Queue.EmailQueue)
	subCache := cache.NewSubscriptionCache(rdb, time.Duration(cfg.Cache.SubscriptionTTLSeconds)*time.Second)
	if cfg.Playback.SigningKeyID == "" && cfg.Playback.SigningKeyPrivate == "" {
		log.Println("WARNING: 播放凭证签名密钥未配置，所有视频地址实际公开可访问，严禁在生产环境使用此模式")
	}
	signer := playback.NewSigner(
		playback.NewStaticKeyProvider(cfg.Playback.SigningKeyID, cfg.Playback.SigningKeyPrivate),
		time.Duration(cfg.Playback.TokenTTLSeconds)*time.Second,
	)

	authService := service.NewAuthService(userRepo, emailQueue, cfg)
	userService := service.NewUserService(userRepo, ossClient)
	subscriptionService := service.NewSubscriptionService(subRepo, courseRepo, subCache)
	unlockStore := service.NewManualUnlockStore(unlockRepo)
	courseService := service.NewCourseService(courseRepo, lessonRepo, subscriptionService, unlockStore, ossClient, releaseLoc)
	playbackService := service.NewPlaybackService(
		subscriptionService,
		service.NewLessonReleaseStore(lessonRepo),
		unlockStore,
		signer,
		releaseLoc,
	)
	unlockService := service.NewUnlockService(unlockRepo, lessonRepo, userRepo, pubsub.NewPublisher(rdb))

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(authService, oauth.NewStateStore(rdb))
	userHandler := handler.NewUserHandler(userService)
	courseHandler := handler.NewCourseHandler(courseService)
	playbackHandler := handler.NewPlaybackHandler(playbackService)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService)
	unlockHandler := handler.NewUnlockHandler(unlockService)
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret)

	// 订阅清扫兜底任务
	cronService := cron.NewService(subscriptionService, time.Hour)
	cronService.Start()
	defer cronService.Stop()

	// 初始化 Router
	router := api.NewRouter(
		authHandler,
		userHandler,
		courseHandler,
		playbackHandler,
		subscriptionHandler,
		unlockHandler,
		websocketHandler,
		userRepo,
		cfg,
	)
	engine := router.Setup()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	if err := engine.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
