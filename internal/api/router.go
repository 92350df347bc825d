package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/willemhelmet/prompt-pugilists/internal/api/handlers"
	"github.com/willemhelmet/prompt-pugilists/internal/api/middleware"
	"github.com/willemhelmet/prompt-pugilists/internal/battle"
	"github.com/willemhelmet/prompt-pugilists/internal/config"
	"github.com/willemhelmet/prompt-pugilists/internal/game"
	"github.com/willemhelmet/prompt-pugilists/internal/repository"
	"github.com/willemhelmet/prompt-pugilists/internal/room"
	"github.com/willemhelmet/prompt-pugilists/internal/service"
	"github.com/willemhelmet/prompt-pugilists/internal/websocket"
	"github.com/willemhelmet/prompt-pugilists/pkg/database"
	"github.com/willemhelmet/prompt-pugilists/pkg/ratelimit"
	"github.com/willemhelmet/prompt-pugilists/pkg/resolver"
	"github.com/willemhelmet/prompt-pugilists/pkg/storage"
)

// SetupRouter API 라우터 및 게임 오케스트레이터 조립
// 반환된 room.Store는 종료 시 호출자가 Stop해야 한다
func SetupRouter(cfg *config.Config, db *database.DB, redisClient *redis.Client, zapLogger *zap.Logger) (*gin.Engine, *room.Store) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 전역 미들웨어
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// Storage 초기화
	storageManager := storage.NewStorage(cfg.StoragePath)

	// 전투 리졸버 클라이언트 초기화
	resolverClient := resolver.NewClient(resolver.Config{
		BaseURL: cfg.MistralBaseURL,
		APIKey:  cfg.MistralAPIKey,
		Timeout: cfg.ResolverTimeout,
	})

	// Repository 초기화
	userRepo := repository.NewUserRepository(db)
	characterRepo := repository.NewCharacterRepository(db)
	battleRepo := repository.NewBattleRepository(db)

	// Service 초기화
	userService := service.NewUserService(userRepo)
	characterService := service.NewCharacterService(characterRepo, storageManager)
	suggestionService := service.NewSuggestionService(resolverClient)

	// 룸 스토어 초기화 및 만료 청소 시작
	roomStore := room.NewStore(cfg.RoomTTL, cfg.RoomSweepInterval)
	roomStore.Start()

	// WebSocket Hub + 게임 핸들러 초기화
	wsHub := websocket.NewHub(zapLogger)
	battleEngine := battle.NewEngine(resolverClient, cfg.ResolverTimeout)
	gameHandler := game.NewHandler(
		roomStore,
		battleEngine,
		wsHub,
		characterRepo,
		battleRepo,
		cfg.ActionTimeLimit,
		cfg.DisconnectGrace,
		zapLogger,
	)
	wsHub.SetHandler(gameHandler)
	go wsHub.Run()

	// Redis 기반 분산 Rate Limiter
	redisLimiter := ratelimit.NewRedisLimiter(redisClient, "ratelimit:")

	// Handler 초기화
	authHandler := handlers.NewAuthHandler(userService, cfg)
	characterHandler := handlers.NewCharacterHandler(characterService)
	suggestionHandler := handlers.NewSuggestionHandler(suggestionService)
	battleHandler := handlers.NewBattleHandler(battleRepo)
	wsHandler := handlers.NewWebSocketHandler(wsHub, zapLogger)

	// Health check
	router.GET("/health", handlers.HealthCheck)

	// 정적 파일 서빙
	router.Static("/storage", cfg.StoragePath)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// WebSocket endpoint (게임 세션)
		v1.GET("/ws", wsHandler.HandleWebSocket)

		// Auth routes
		auth := v1.Group("/auth")
		auth.Use(middleware.RedisAuthRateLimit(redisLimiter))
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Character routes
		characters := v1.Group("/characters")
		{
			characters.GET("", characterHandler.ListCharacters)
			characters.GET("/:id", characterHandler.GetCharacter)
			characters.POST("", middleware.Auth(cfg), characterHandler.CreateCharacter)
			characters.PUT("/:id", middleware.Auth(cfg), characterHandler.UpdateCharacter)
			characters.DELETE("/:id", middleware.Auth(cfg), characterHandler.DeleteCharacter)
			characters.POST("/:id/image", middleware.Auth(cfg), characterHandler.UploadCharacterImage)
		}

		// Suggestion routes (LLM 호출 비용이 있어 Redis Rate Limit 적용)
		suggestions := v1.Group("/suggestions")
		suggestions.Use(middleware.RedisSuggestionRateLimit(redisLimiter))
		{
			suggestions.GET("/character", suggestionHandler.SuggestCharacter)
			suggestions.GET("/environment", suggestionHandler.SuggestEnvironment)
		}

		// Battle archive routes
		battles := v1.Group("/battles")
		{
			battles.GET("/:roomId", battleHandler.GetBattleByRoom)
		}
	}

	return router, roomStore
}
