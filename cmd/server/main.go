package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cinematalkiez/blackhole/internal/checkclient"
	"github.com/cinematalkiez/blackhole/internal/config"
	"github.com/cinematalkiez/blackhole/internal/database"
	"github.com/cinematalkiez/blackhole/internal/gate"
	"github.com/cinematalkiez/blackhole/internal/handler"
	"github.com/cinematalkiez/blackhole/internal/logger"
	"github.com/cinematalkiez/blackhole/internal/metrics"
	"github.com/cinematalkiez/blackhole/internal/middleware"
	"github.com/cinematalkiez/blackhole/internal/repository"
	"github.com/cinematalkiez/blackhole/internal/service"
	"github.com/cinematalkiez/blackhole/internal/ws"
	"github.com/cinematalkiez/blackhole/migrations"
	"github.com/cinematalkiez/blackhole/pkg/auth"
	"github.com/cinematalkiez/blackhole/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// @title           BlackHole API
// @version         1.0
// @description     Device gate, verification store and movie catalogue for BlackHole.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// ==================== Load Config ====================
	cfg := config.Load()
	log := logger.New(cfg.Log.Level, cfg.App.Env)
	defer log.Sync()

	log.Info("starting BlackHole server", zap.String("env", cfg.App.Env))

	// ==================== Database ====================
	db, err := database.Open(cfg.DB, cfg.App.Env)
	if err != nil {
		log.Fatal("failed to connect to database", zap.String("driver", cfg.DB.Driver), zap.Error(err))
	}
	log.Info("connected to database", zap.String("driver", cfg.DB.Driver))

	migrate(db, cfg, log)

	// ==================== Redis ====================
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("failed to connect to Redis", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
	}
	log.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr()))

	// ==================== Metrics ====================
	metrics.MustRegister(prometheus.DefaultRegisterer)

	// ==================== Initialize Layers ====================
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Expiry)

	// Repositories
	verificationRepo := repository.NewVerificationRepository(db)
	movieRepo := repository.NewMovieRepository(db)

	// Catalogue feed hub (Redis Pub/Sub across instances)
	hub := ws.NewHub(rdb, log.Named("ws"))
	go hub.Run(ctx)

	// Services
	verificationService := service.NewVerificationService(verificationRepo, rdb, cfg.Check.CacheTTL, log.Named("verification"))
	movieService := service.NewMovieService(movieRepo, hub, log.Named("catalog"))
	tokenService := service.NewTokenService(jwtManager, rdb)

	go verificationService.RunCleanup(ctx, cfg.Verify.CleanupInterval, cfg.Verify.Retention)

	// Gate: remote store when CHECK_API_URL is set, in-process otherwise
	var lookup gate.Lookup = verificationService
	if cfg.Check.APIURL != "" {
		lookup = checkclient.NewClient(cfg.Check.APIURL, cfg.Check.Timeout)
		log.Info("using remote verification store", zap.String("url", cfg.Check.APIURL))
	}

	landing := gate.New(lookup, log.Named("gate"))
	landing.SetMaxAge(cfg.Gate.MaxAge)
	landing.SetObserver(func(_ gate.DeviceIdentity, d gate.Decision) {
		metrics.GateDecisionsTotal.WithLabelValues(d.String()).Inc()
	})

	// MinIO Storage
	var posters storage.ObjectStore
	minioStorage, err := storage.NewMinIO(ctx, storage.Config{
		Endpoint:  cfg.MinIO.Endpoint,
		PublicURL: cfg.MinIO.PublicURL,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
	}, log)
	if err != nil {
		log.Warn("MinIO not available, poster upload disabled", zap.Error(err))
	} else {
		posters = minioStorage
		log.Info("connected to MinIO", zap.String("bucket", cfg.MinIO.Bucket))
	}

	// Handlers
	browser := handler.BrowserStorage{
		Codec: jwtManager,
		Options: gate.CookieOptions{
			Name:   cfg.Gate.CookieName,
			Secure: cfg.Gate.CookieSecure,
		},
		Log: log,
	}
	gateHandler := handler.NewGateHandler(landing, lookup, verificationService, browser, handler.GateOptions{
		ValidTokenTTL: cfg.Gate.ValidTokenTTL,
		RenderTimeout: cfg.Gate.RenderTimeout,
		RedirectURL:   cfg.Verify.RedirectURL,
	}, log.Named("gate"))
	homeHandler := handler.NewHomeHandler(movieService, browser, landing.Now, log)
	checkHandler := handler.NewCheckHandler(verificationService, log)
	movieHandler := handler.NewMovieHandler(movieService)
	posterHandler := handler.NewPosterHandler(posters, movieService)
	wsHandler := handler.NewWSHandler(hub, browser, landing.Now, cfg.CORS.Origins, log.Named("ws"))

	// ==================== Gin Router ====================
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log.Named("http")), middleware.Metrics())

	// Serve swagger.json at /docs/swagger.json to avoid conflict with /swagger/* wildcard
	router.StaticFile("/docs/swagger.json", "./docs/swagger.json")
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/docs/swagger.json")))

	router.Use(middleware.CORSMiddleware(cfg.CORS.Origins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "blackhole",
			"time":    time.Now().Format(time.RFC3339),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ==================== Pages ====================
	router.GET("/", gateHandler.Landing)
	router.GET("/Verifypage.html", gateHandler.VerifyPage)
	router.GET("/verification-success", gateHandler.VerificationSuccess)
	router.GET("/index2", homeHandler.Home)
	router.GET("/ws/catalog", wsHandler.CatalogFeed)

	// ==================== API Routes ====================
	router.GET("/check/:id", checkHandler.Check)

	api := router.Group("/api")
	{
		api.GET("/gate", gateHandler.GateStatus)
		api.GET("/getmovies", movieHandler.GetMovies)

		api.POST("/verify/:id", middleware.ServiceAuth(jwtManager, tokenService, auth.ScopeVerify), checkHandler.MarkVerified)

		catalog := api.Group("")
		catalog.Use(middleware.ServiceAuth(jwtManager, tokenService, auth.ScopeCatalog))
		{
			catalog.POST("/movies", movieHandler.CreateMovie)
			catalog.POST("/movies/:id/publish", movieHandler.PublishMovie)
			catalog.POST("/posters", posterHandler.UploadPoster)
		}
	}

	// ==================== Start Server ====================
	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	log.Info("BlackHole running",
		zap.String("addr", "http://0.0.0.0:"+cfg.App.Port),
		zap.String("docs", "/swagger/index.html"),
		zap.String("feed", "/ws/catalog"))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	// Give ongoing requests 5 seconds to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	cancel()
	_ = rdb.Close()
	log.Info("server exited gracefully")
}

// migrate applies the SQL migrations on postgres and falls back to
// AutoMigrate when they cannot run (and always on sqlite).
func migrate(db *gorm.DB, cfg *config.Config, log *zap.Logger) {
	if cfg.DB.Driver == "postgres" {
		err := migrations.Run(cfg.DB.URL(), log)
		if err == nil {
			return
		}
		log.Warn("migration failed, falling back to GORM AutoMigrate", zap.Error(err))
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}
	log.Info("database migrated")
}
