// notifier delivers client notification requests queued on Pub/Sub by the
// API when NOTIFY_VIA_PUBSUB=true. It pulls from NOTIFY_SUBSCRIPTION and
// serves /healthz and /metrics for the platform.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bitbucket.org/prajapati/wealth_backend/config"
	"bitbucket.org/prajapati/wealth_backend/middlewares"
	"bitbucket.org/prajapati/wealth_backend/models"
	"bitbucket.org/prajapati/wealth_backend/workflow"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	settings := config.LoadSettings()
	logger := config.GetLogger()
	port := os.Getenv("NOTIFIER_PORT")
	if port == "" {
		port = settings.Port
	}

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	if !settings.SMTP.Configured() {
		logger.WithFields(logrus.Fields{"field": "smtp"}).Fatal("SMTP_HOST and SMTP_FROM are required")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middlewares.MetricsMiddleware())
	r.Use(gin.Recovery())
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", middlewares.MetricsHandler())
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	store, _, err := config.OpenStore(sigCtx, settings)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.WithFields(logrus.Fields{"field": "docstore"}).Fatal(err.Error())
	}
	defer store.Close()

	deps, err := models.DependenciesFromSettings(sigCtx, settings)
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "dependencies"}).Fatal(err.Error())
	}
	// The worker delivers; it never queues.
	deps.Publisher = nil
	repos := models.NewRepositories(store, deps)
	worker := workflow.NewNotificationWorker(repos.Notifications, logger)

	client, err := config.GetPubSubClient(sigCtx)
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "pubsub"}).Fatal(err.Error())
	}
	topic, err := config.CreateTopicIfNotExists(sigCtx, client, settings.NotifyTopic)
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "pubsub"}).Fatal(err.Error())
	}
	sub, err := config.CreateSubscriptionIfNotExists(sigCtx, client, settings.NotifySub, topic)
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "pubsub"}).Fatal(err.Error())
	}
	sub.ReceiveSettings.MaxOutstandingMessages = config.IntFromEnv("NOTIFY_MAX_OUTSTANDING", 10)

	receiveErrCh := make(chan error, 1)
	go func() {
		receiveErrCh <- worker.Receive(sigCtx, sub)
	}()
	logger.WithFields(logrus.Fields{
		"topic":        settings.NotifyTopic,
		"subscription": settings.NotifySub,
	}).Info("notifier receiving")

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error(err)
		}
	case err := <-receiveErrCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.WithFields(logrus.Fields{"field": "pubsub"}).Error("receive stopped: " + err.Error())
		}
	}
	stopSignals()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = client.Close()
	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}
