package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"suimail/backend/internal/auth"
	jwtpkg "suimail/backend/internal/auth/jwt"
	"suimail/backend/internal/chain"
	"suimail/backend/internal/config"
	"suimail/backend/internal/crypto"
	"suimail/backend/internal/health"
	"suimail/backend/internal/logger"
	"suimail/backend/internal/monitoring"
	"suimail/backend/internal/objectstorage"
	"suimail/backend/internal/service"
	"suimail/backend/internal/storage"
	"suimail/backend/internal/storage/memory"
	"suimail/backend/internal/storage/redis"
	sqlstore "suimail/backend/internal/storage/sql"
	httptransport "suimail/backend/internal/transport/http"
	"suimail/backend/internal/websocket"
)

// main 启动链下镜像服务（HTTP API + WebSocket 推送）。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 设置 Gin 模式（基于开发环境标志）
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// 初始化日志系统
	log, err := logger.NewLogger(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		LogFile:     cfg.Log.LogFile,
		Compress:    true,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	log.Info("starting suimail server",
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("development", cfg.Log.Development),
	)

	// 初始化存储层
	var store storage.Store
	if cfg.Database.Type != "" && cfg.Database.DSN != "" {
		sqlStore, err := sqlstore.NewStore(
			cfg.Database.Type,
			cfg.Database.DSN,
			cfg.Database.MaxOpenConns,
			cfg.Database.MaxIdleConns,
			cfg.Database.ConnMaxLifetime,
		)
		if err != nil {
			panic(fmt.Sprintf("failed to initialize database storage: %v", err))
		}
		store = sqlStore
		log.Info("using database storage", zap.String("type", cfg.Database.Type))
	} else {
		store = memory.NewStore()
		log.Info("using memory storage (development mode)")
	}
	defer store.Close()

	// 初始化 Redis（可选：缓存、JWT 黑名单、注册表解析）
	var redisClient *redis.Client
	var cache *redis.Cache
	if cfg.Redis.Enabled {
		redisClient, err = redis.New(&cfg.Redis)
		if err != nil {
			log.Warn("failed to connect to redis, continuing without cache", zap.Error(err))
		} else {
			cache = redis.NewCache(redisClient)
			defer redisClient.Close()
			log.Info("redis cache initialized", zap.String("address", cfg.Redis.Address))
		}
	}

	// 初始化静态加密密钥
	var cipherKey []byte
	if cfg.Cipher.Key != "" {
		cipherKey, err = base64.StdEncoding.DecodeString(cfg.Cipher.Key)
		if err != nil {
			panic(fmt.Sprintf("failed to decode cipher key: %v", err))
		}
	} else {
		cipherKey, err = crypto.LoadOrCreateKeyFile(cfg.Cipher.KeyFile)
		if err != nil {
			panic(fmt.Sprintf("failed to load cipher key: %v", err))
		}
	}
	cipher, err := crypto.New(cipherKey)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize cipher: %v", err))
	}

	// 初始化链上中继
	var relay chain.Relay
	if cfg.Chain.RPCURL != "" {
		relay = chain.NewRPCRelay(cfg.Chain.RPCURL, cfg.Chain.PackageID, cfg.Chain.Timeout, log)
		log.Info("chain relay initialized",
			zap.String("rpc_url", cfg.Chain.RPCURL),
			zap.String("package_id", cfg.Chain.PackageID),
		)
	} else {
		relay = chain.NopRelay{}
		log.Warn("chain relay not configured, move calls are no-ops")
	}
	caller := chain.NewCaller(relay)

	// 初始化对象存储归档（可选）
	var blobStore *objectstorage.BlobStore
	if cfg.ObjectStorage.Enabled {
		blobStore, err = objectstorage.NewBlobStore(&cfg.ObjectStorage)
		if err != nil {
			log.Warn("failed to initialize blob store, continuing without archive", zap.Error(err))
			blobStore = nil
		} else {
			log.Info("blob archive initialized", zap.String("bucket", cfg.ObjectStorage.Bucket))
		}
	}

	// 初始化监控与健康检查
	metrics := monitoring.NewMetrics()
	healthChecker := health.NewHealthChecker(store, redisClient, log)

	// 初始化认证
	jwtManager := jwtpkg.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessExpiry)
	authService := auth.NewService(store, jwtManager)

	log.Info("JWT configuration",
		zap.String("issuer", cfg.JWT.Issuer),
		zap.Duration("access_expiry", cfg.JWT.AccessExpiry),
	)

	// 初始化服务层
	identityService := service.NewIdentityService(store, caller, cache, log)
	mailboxService := service.NewMailboxService(store, store, caller, cache, log)
	messageService := service.NewMessageService(store, store, cipher, caller, log)
	kioskService := service.NewKioskService(store, store, caller, log)

	if blobStore != nil {
		messageService.SetBlobStore(blobStore)
	}

	// 创建 WebSocket Hub 并接入新消息推送。
	// Redis 可用时通过发布订阅跨实例扩散通知，否则仅推送本地连接。
	wsHub := websocket.NewHub(cfg.CORS.AllowedOrigins, log)
	var fanout *websocket.Fanout
	if cache != nil {
		fanout = websocket.NewFanout(cache, wsHub, log)
		messageService.SetNotifier(fanout)
	} else {
		messageService.SetNotifier(wsHub)
	}

	// 创建 HTTP 服务器
	httpAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	router := httptransport.NewRouter(httptransport.RouterDependencies{
		Config:          cfg,
		AuthService:     authService,
		IdentityService: identityService,
		MailboxService:  mailboxService,
		MessageService:  messageService,
		KioskService:    kioskService,
		JWTManager:      jwtManager,
		Cache:           cache,
		WebSocketHub:    wsHub,
		Metrics:         metrics,
		HealthChecker:   healthChecker,
		Logger:          log,
	})

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// 信号处理
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	// HTTP 服务器 goroutine
	group.Go(func() error {
		log.Info("starting HTTP server", zap.String("address", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
			return err
		}
		return nil
	})

	// 通知扩散 goroutine
	if fanout != nil {
		group.Go(func() error {
			return fanout.Run(groupCtx)
		})
	}

	// 优雅关闭 goroutine
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received, gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", zap.Error(err))
		}

		log.Info("server stopped")
		return nil
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		log.Fatal("server error", zap.Error(err))
	}

	log.Info("server exited cleanly")
}
