package api

import (
	"github.com/gin-gonic/gin"

	"github.com/dieselnoi/course_go_server/config"
	"github.com/dieselnoi/course_go_server/internal/api/handler"
	"github.com/dieselnoi/course_go_server/internal/api/middleware"
)

type Router struct {
	authHandler         *handler.AuthHandler
	userHandler         *handler.UserHandler
	courseHandler       *handler.CourseHandler
	playbackHandler     *handler.PlaybackHandler
	subscriptionHandler *handler.SubscriptionHandler
	unlockHandler       *handler.UnlockHandler
	websocketHandler    *handler.WebSocketHandler
	userLoader          middleware.UserLoader
	cfg                 *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	courseHandler *handler.CourseHandler,
	playbackHandler *handler.PlaybackHandler,
	subscriptionHandler *handler.SubscriptionHandler,
	unlockHandler *handler.UnlockHandler,
	websocketHandler *handler.WebSocketHandler,
	userLoader middleware.UserLoader,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:         authHandler,
		userHandler:         userHandler,
		courseHandler:       courseHandler,
		playbackHandler:     playbackHandler,
		subscriptionHandler: subscriptionHandler,
		unlockHandler:       unlockHandler,
		websocketHandler:    websocketHandler,
		userLoader:          userLoader,
		cfg:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket（解锁事件推送）
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/verify-email", r.authHandler.VerifyEmail)
			auth.GET("/github", r.authHandler.GithubAuth)
			auth.GET("/github/callback", r.authHandler.GithubCallback)
		}

		// 课程目录 - 公开浏览（可选认证，登录用户看到自己的锁定状态）
		courses := api.Group("/courses")
		courses.Use(middleware.OptionalAuth(r.cfg.JWT.Secret))
		{
			courses.GET("", r.courseHandler.List)
			courses.GET("/:slug", r.courseHandler.Get)
		}

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			// 用户
			user := authenticated.Group("/user")
			{
				user.GET("/profile", r.userHandler.GetProfile)
				user.PUT("/profile", r.userHandler.UpdateProfile)
				user.POST("/avatar", r.userHandler.UploadAvatar)
			}

			// 播放凭证
			authenticated.GET("/lessons/:id/playback", r.playbackHandler.Resolve)

			// 订阅
			authenticated.GET("/subscription/me", r.subscriptionHandler.List)
		}

		// 运营后台
		admin := api.Group("/admin")
		admin.Use(middleware.Auth(r.cfg.JWT.Secret), middleware.AdminOnly(r.userLoader))
		{
			admin.POST("/users/:user_id/unlocks/:lesson_id", r.unlockHandler.Grant)
			admin.DELETE("/users/:user_id/unlocks/:lesson_id", r.unlockHandler.Revoke)
			admin.POST("/courses/:course_id/thumbnail", r.courseHandler.UploadThumbnail)
		}
	}

	return engine
}
