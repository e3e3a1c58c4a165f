package httptransport

import (
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"suimail/backend/internal/auth"
	jwtpkg "suimail/backend/internal/auth/jwt"
	"suimail/backend/internal/config"
	"suimail/backend/internal/health"
	"suimail/backend/internal/middleware"
	"suimail/backend/internal/monitoring"
	"suimail/backend/internal/service"
	"suimail/backend/internal/storage/redis"
	"suimail/backend/internal/websocket"
)

// RouterDependencies 路由器依赖项
type RouterDependencies struct {
	Config          *config.Config
	AuthService     *auth.Service
	IdentityService *service.IdentityService
	MailboxService  *service.MailboxService
	MessageService  *service.MessageService
	KioskService    *service.KioskService
	JWTManager      *jwtpkg.Manager
	Cache           *redis.Cache     // 可选
	WebSocketHub    *websocket.Hub   // 可选
	Metrics         *monitoring.Metrics
	HealthChecker   *health.HealthChecker
	Logger          *zap.Logger
}

// NewRouter 创建并返回 Gin 路由实例。
func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()

	// 监控中间件替代默认中间件
	mm := middleware.NewMonitoringMiddleware(deps.Metrics, deps.Logger)
	router.Use(mm.PanicRecovery())
	router.Use(mm.HTTPMetrics())
	router.Use(mm.BusinessMetrics())

	// 单 IP 限流
	rateLimiter := middleware.NewRateLimiter(50, 100)
	router.Use(rateLimiter.Limit())

	// CORS 配置
	corsConfig := gincors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// 如果允许所有来源，则需清空凭证支持。
	for _, origin := range corsConfig.AllowOrigins {
		if origin == "*" {
			corsConfig.AllowCredentials = false
			break
		}
	}
	router.Use(gincors.New(corsConfig))

	// 创建处理器
	authHandler := NewAuthHandler(deps.AuthService, deps.JWTManager, deps.Cache, deps.Logger)
	userHandler := NewUserHandler(deps.IdentityService, deps.Logger)
	mailboxHandler := NewMailboxHandler(deps.MailboxService, deps.Logger)
	messageHandler := NewMessageHandler(deps.MessageService, deps.MailboxService, deps.Logger)
	kioskHandler := NewKioskHandler(deps.KioskService, deps.Logger)

	// 创建中间件
	jwtAuth := middleware.NewJWTAuth(deps.JWTManager, deps.Cache, deps.Logger)

	// 健康检查与指标
	router.GET("/health/live", gin.WrapF(deps.HealthChecker.LiveHandler()))
	router.GET("/health/ready", gin.WrapF(deps.HealthChecker.ReadyHandler()))
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	// ========== Auth Routes ==========
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/token", authHandler.Token)
		authRoutes.POST("/logout", jwtAuth.RequireAuth(), authHandler.Logout)
		authRoutes.GET("/me", jwtAuth.RequireAuth(), authHandler.Me)
	}

	// ========== Profile Routes ==========
	router.POST("/register", userHandler.Register)
	router.POST("/update_profile", jwtAuth.RequireAuth(), userHandler.UpdateProfile)
	router.GET("/profile/:wallet", userHandler.GetProfile)

	// ========== Mailbox Routes ==========
	router.POST("/create_mailbox", mailboxHandler.Create)
	router.GET("/mailbox/:wallet", mailboxHandler.GetByOwner)
	router.DELETE("/delete_mailbox/:mailboxId", jwtAuth.RequireAuth(), mailboxHandler.Delete)

	// ========== Message Routes ==========
	router.POST("/store_message", messageHandler.Store)
	router.GET("/messages", jwtAuth.RequireAuth(), messageHandler.List)
	router.DELETE("/delete_message/:mailboxId/:messageId", jwtAuth.RequireAuth(), messageHandler.Delete)

	// ========== Kiosk Routes ==========
	router.POST("/create_kiosk", jwtAuth.RequireAuth(), kioskHandler.Create)
	router.POST("/add_kiosk_item", jwtAuth.RequireAuth(), kioskHandler.AddItem)
	router.GET("/kiosks", kioskHandler.List)
	router.GET("/kiosk/:kioskId", kioskHandler.Get)
	router.GET("/store/:kioskId", kioskHandler.ListItems)
	router.DELETE("/delete_kiosk/:kioskId", jwtAuth.RequireAuth(), kioskHandler.Delete)
	router.DELETE("/delete_kiosk_item/:itemId", jwtAuth.RequireAuth(), kioskHandler.DeleteItem)
	router.POST("/buy_kiosk_item/:itemId", kioskHandler.BuyItem)
	router.POST("/withdraw_funds/:bankId", jwtAuth.RequireAuth(), kioskHandler.Withdraw)

	// ========== WebSocket Routes ==========
	if deps.WebSocketHub != nil {
		router.GET("/ws", jwtAuth.RequireAuth(), deps.WebSocketHub.ServeWS)
	}

	return router
}
