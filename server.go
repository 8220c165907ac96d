package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"bitbucket.org/prajapati/wealth_backend/config"
	"bitbucket.org/prajapati/wealth_backend/handlers"
	"bitbucket.org/prajapati/wealth_backend/middlewares"
	"bitbucket.org/prajapati/wealth_backend/models"
	"bitbucket.org/prajapati/wealth_backend/utils"
	"bitbucket.org/prajapati/wealth_backend/workflow"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RateLimiter counts requests per client IP in fixed Redis windows.
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

func main() {
	settings := config.LoadSettings()
	logger := config.GetLogger()

	if settings.IsProduction() && settings.JWTSecret == "" {
		logger.WithFields(logrus.Fields{"field": "settings"}).Fatal(utils.ErrMissingJwtSecret.Error())
	}
	utils.CountryCode = settings.PhoneRegion

	// Cloud Run sends SIGTERM on revision shutdown.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// The listener starts before dependencies connect; until the app
	// handler is installed every route but /healthz answers 503.
	var app atomic.Pointer[gin.Engine]
	gate := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		engine := app.Load()
		if engine == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		engine.ServeHTTP(w, r)
	})
	srv := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           gate,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	store, relay, err := config.OpenStore(sigCtx, settings)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.WithFields(logrus.Fields{"field": "docstore"}).Fatal(err.Error())
	}
	defer store.Close()

	relayCtx, cancelRelay := context.WithCancel(context.Background())
	defer cancelRelay()
	if relay != nil {
		go func() {
			if err := relay.Listen(relayCtx); err != nil && !errors.Is(err, context.Canceled) {
				config.LogError(logger, "server.go", "main", "docstore relay stopped", settings.RelayChannel, err)
			}
		}()
	}

	deps, err := models.DependenciesFromSettings(sigCtx, settings)
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "dependencies"}).Fatal(err.Error())
	}
	repos := models.NewRepositories(store, deps)

	app.Store(newRouter(settings, repos, logger))
	logger.WithFields(logrus.Fields{
		"info":     "Connection Established",
		"docstore": settings.DocstoreDriver,
	}).Info("listening on port ", settings.Port)
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	cancelRelay()

	// Open snapshot streams end when the request context is cancelled.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if db := config.GetDB(); db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}

func newRouter(settings config.Settings, repos *models.Repositories, logger *logrus.Logger) *gin.Engine {
	if settings.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Header("x-correlation-id", cid)
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	})

	corsConfig := cors.DefaultConfig()
	// In production only the configured origins are allowed; none by default.
	if settings.IsProduction() {
		corsConfig.AllowOrigins = settings.AllowedOrigins
		if len(corsConfig.AllowOrigins) == 0 {
			corsConfig.AllowOriginFunc = func(string) bool { return false }
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	// Env:
	// - RATE_LIMIT_ENABLED=true
	// - RATE_LIMIT_WINDOW_SECONDS=60
	// - RATE_LIMIT_MAX_REQUESTS=600
	if config.EnvBool("RATE_LIMIT_ENABLED", false) {
		if client := config.GetRedisDB(); client != nil {
			limit := int64(config.IntFromEnv("RATE_LIMIT_MAX_REQUESTS", 600))
			window := time.Duration(config.IntFromEnv("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second
			r.Use(NewRateLimiter(client, limit, window).RateLimitMiddleware)
		} else {
			logger.WithFields(logrus.Fields{"field": "ratelimit"}).Warn("RATE_LIMIT_ENABLED without redis; rate limiting is off")
		}
	}

	r.Use(middlewares.MetricsMiddleware())
	r.Use(middlewares.SessionMiddleware(repos))
	r.Use(middlewares.LoaderMiddleware(repos))
	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())

	r.GET("/metrics", middlewares.MetricsHandler())
	// Pub/Sub push endpoint for deployments without a pull worker.
	r.POST("/pubsub/notifications", workflow.NewNotificationWorker(repos.Notifications, logger).PushHandler())
	handlers.Register(r, repos)
	r.NoRoute(customNotFoundHandler)
	return r
}

// customErrorLogger logs only requests that recorded errors.
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
			logger.WithFields(logrus.Fields{
				"path":           c.FullPath(),
				"status":         c.Writer.Status(),
				"correlation_id": cid,
			}).Error(c.Errors.String())
		}
	}
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
}

func NewRateLimiter(client *redis.Client, limit int64, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 600
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	key := "ratelimit:" + c.ClientIP()
	ctx := c.Request.Context()

	count, err := rl.client.Incr(ctx, key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	if count == 1 {
		if err := rl.client.Expire(ctx, key, rl.window).Err(); err != nil {
			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
	}

	if count > rl.limit {
		c.Header("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", int(rl.window.Seconds())),
		})
		return
	}

	c.Next()
}
