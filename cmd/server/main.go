// Angel API Server
// Guided interview backend: deterministic progression over a generative model

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/founderport/angel/internal/ai"
	"github.com/founderport/angel/internal/artifacts"
	"github.com/founderport/angel/internal/auth"
	"github.com/founderport/angel/internal/cache"
	"github.com/founderport/angel/internal/db"
	"github.com/founderport/angel/internal/handlers"
	"github.com/founderport/angel/internal/interview"
	"github.com/founderport/angel/internal/logging"
	"github.com/founderport/angel/internal/middleware"
	"github.com/founderport/angel/internal/research"
	"github.com/founderport/angel/internal/websocket"
)

func main() {
	// .env is optional; system environment wins anyway.
	_ = godotenv.Load()

	logging.Init()
	defer logging.Sync()
	log := logging.L()

	if os.Getenv("ENVIRONMENT") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	database, err := db.NewDatabase(db.ConfigFromEnv())
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	// Redis is optional: the turn lock degrades to an in-process lock.
	var redisClient *db.RedisClient
	if rc, err := db.NewRedisClient(db.RedisConfigFromEnv()); err != nil {
		log.Warn("redis unavailable, turn lock running in-process", zap.Error(err))
	} else {
		redisClient = rc
		defer redisClient.Close()
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	authService := auth.NewAuthService(jwtSecret)

	wsHub := websocket.NewHub()
	go wsHub.Run()
	defer wsHub.Shutdown()

	if os.Getenv("OPENAI_API_KEY") == "" {
		log.Warn("OPENAI_API_KEY not set, generation will fail until configured")
	}
	generator := ai.NewClient(os.Getenv("OPENAI_API_KEY"))

	var researcher interview.Researcher
	if key := os.Getenv("TAVILY_API_KEY"); key != "" {
		researcher = research.NewClient(key)
	} else {
		log.Warn("TAVILY_API_KEY not set, research disabled")
	}

	engine := interview.NewEngine(generator, researcher, wsHub, log.Named("engine"))

	artifactStore := db.NewArtifactStore(database)
	documents := artifacts.NewService(generator, artifactStore, buildArtifactStorage(log))

	turnLock := cache.NewTurnLock(redisClient)

	handler := handlers.NewHandler(database, engine, documents, authService, wsHub, turnLock)
	router := setupRouter(handler)

	srv := &http.Server{
		Addr:         ":" + getPort(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("angel server starting", zap.String("port", getPort()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down angel server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}
	log.Info("server shut down gracefully")
}

func setupRouter(handler *handlers.Handler) *gin.Engine {
	router := gin.New()

	middleware.InitRateLimiter(600, 30)
	middleware.InitAuthRateLimiter()

	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS())
	router.Use(middleware.Security())
	router.Use(middleware.RateLimit())
	router.Use(middleware.Metrics())

	router.GET("/health", handler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		authGroup.Use(middleware.AuthRateLimit())
		{
			authGroup.POST("/register", handler.Register)
			authGroup.POST("/login", handler.Login)
			authGroup.POST("/refresh", handler.RefreshToken)
		}

		protected := v1.Group("")
		protected.Use(middleware.RequireAuth(handler.AuthService))
		{
			protected.GET("/user/me", handler.Me)

			protected.POST("/sessions", handler.CreateSession)
			protected.GET("/sessions", handler.ListSessions)
			protected.GET("/sessions/:id", handler.GetSession)
			protected.DELETE("/sessions/:id", handler.DeleteSession)

			protected.POST("/sessions/:id/chat", handler.Chat)
			protected.POST("/sessions/:id/draft", handler.ResolveDraft)
			protected.POST("/sessions/:id/navigate", handler.Navigate)
			protected.GET("/sessions/:id/history", handler.History)

			protected.GET("/sessions/:id/artifacts", handler.ListArtifacts)
			protected.GET("/sessions/:id/artifacts/latest", handler.LatestArtifact)

			protected.GET("/ws", handler.WSHub.HandleWebSocket)
		}
	}

	return router
}

func buildArtifactStorage(log *zap.Logger) artifacts.Storage {
	if bucket := os.Getenv("ARTIFACTS_S3_BUCKET"); bucket != "" {
		storage, err := artifacts.NewS3Storage(context.Background(), bucket, os.Getenv("AWS_REGION"))
		if err != nil {
			log.Warn("s3 storage unavailable, artifacts kept in database only", zap.Error(err))
			return nil
		}
		return storage
	}
	if path := os.Getenv("ARTIFACTS_LOCAL_PATH"); path != "" {
		storage, err := artifacts.NewLocalStorage(path)
		if err != nil {
			log.Warn("local artifact storage unavailable", zap.Error(err))
			return nil
		}
		return storage
	}
	return nil
}

func getPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8080"
}
