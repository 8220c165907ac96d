package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"bitbucket.org/prajapati/wealth_backend/config"
	"bitbucket.org/prajapati/wealth_backend/docstore"
	"bitbucket.org/prajapati/wealth_backend/models"
	"bitbucket.org/prajapati/wealth_backend/utils"
	"cloud.google.com/go/pubsub"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrDeliveryInProgress means another worker holds the request; redeliver later.
var ErrDeliveryInProgress = errors.New("notification delivery in progress")

const sentMarkerTTL = 7 * 24 * time.Hour

func sentMarkerKey(id string) string {
	return "notification:sent:" + id
}

// PushEnvelope is the body Pub/Sub posts to a push endpoint.
type PushEnvelope struct {
	Message struct {
		Data       []byte            `json:"data,omitempty"`
		ID         string            `json:"id"`
		Attributes map[string]string `json:"attributes,omitempty"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

type NotificationWorker struct {
	Notifications *models.NotificationService
	Logger        *logrus.Logger
	LockTTL       time.Duration
}

func NewNotificationWorker(notifications *models.NotificationService, logger *logrus.Logger) *NotificationWorker {
	return &NotificationWorker{
		Notifications: notifications,
		Logger:        logger,
		LockTTL:       2 * time.Minute,
	}
}

// Process delivers req at most once per request id. Requests that can never
// succeed return an error for which Retryable is false.
func (w *NotificationWorker) Process(ctx context.Context, req models.NotificationRequest) error {
	if req.ID == "" || len(req.ClientIDs) == 0 {
		return fmt.Errorf("%w: notification request needs an id and clients", docstore.ErrInvalidArgument)
	}
	lock, err := utils.ObtainLock(ctx, "notification", req.ID, w.LockTTL, "notificationWorker.go", "Process")
	if errors.Is(err, utils.ErrLockNotObtained) {
		return ErrDeliveryInProgress
	}
	if err != nil {
		return err
	}
	defer utils.ReleaseLock(ctx, lock)

	if _, sent, err := config.GetRedisValue(ctx, sentMarkerKey(req.ID)); err == nil && sent {
		return nil
	}
	sent, err := w.Notifications.AlreadySent(ctx, req.ID)
	if err != nil {
		return err
	}
	if sent {
		return nil
	}
	if err := w.Notifications.Deliver(ctx, req); err != nil {
		return err
	}
	if err := config.SetRedisValue(ctx, sentMarkerKey(req.ID), time.Now().UTC().Format(time.RFC3339), sentMarkerTTL); err != nil {
		config.LogError(w.Logger, "notificationWorker.go", "Process", "set sent marker", req.ID, err)
	}
	return nil
}

// Retryable reports whether redelivering the message could succeed.
func Retryable(err error) bool {
	switch {
	case err == nil,
		errors.Is(err, docstore.ErrInvalidArgument),
		errors.Is(err, docstore.ErrNotFound),
		errors.Is(err, models.ErrNoRecipients):
		return false
	}
	return true
}

func decodeRequest(data []byte) (models.NotificationRequest, error) {
	var req models.NotificationRequest
	err := json.Unmarshal(data, &req)
	return req, err
}

func (w *NotificationWorker) fields(req models.NotificationRequest, messageID string) logrus.Fields {
	return logrus.Fields{
		"field":      "notificationWorker",
		"request_id": req.ID,
		"clients":    len(req.ClientIDs),
		"message_id": messageID,
	}
}

// PushHandler serves Pub/Sub push deliveries: 204 acks, 500 asks for a retry.
func (w *NotificationWorker) PushHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			config.LogError(w.Logger, "notificationWorker.go", "PushHandler", "io.ReadAll", nil, err)
			c.Status(http.StatusNoContent)
			return
		}
		var envelope PushEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			config.LogError(w.Logger, "notificationWorker.go", "PushHandler", "Unmarshal body", string(body), err)
			c.Status(http.StatusNoContent)
			return
		}
		req, err := decodeRequest(envelope.Message.Data)
		if err != nil {
			config.LogError(w.Logger, "notificationWorker.go", "PushHandler", "Unmarshal request", string(envelope.Message.Data), err)
			c.Status(http.StatusNoContent)
			return
		}

		ctx := utils.SetCorrelationIdInContext(c.Request.Context(), envelope.Message.ID)
		if err := w.Process(ctx, req); err != nil {
			if !Retryable(err) {
				w.Logger.WithFields(w.fields(req, envelope.Message.ID)).Warn("dropping notification: " + err.Error())
				c.Status(http.StatusNoContent)
				return
			}
			w.Logger.WithFields(w.fields(req, envelope.Message.ID)).Error("notification delivery failed: " + err.Error())
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// Receive pulls from sub until ctx ends, acking delivered and poisoned
// messages and nacking the rest.
func (w *NotificationWorker) Receive(ctx context.Context, sub *pubsub.Subscription) error {
	return sub.Receive(ctx, func(ctx context.Context, m *pubsub.Message) {
		req, err := decodeRequest(m.Data)
		if err != nil {
			config.LogError(w.Logger, "notificationWorker.go", "Receive", "Unmarshal request", string(m.Data), err)
			m.Ack()
			return
		}
		ctx = utils.SetCorrelationIdInContext(ctx, m.ID)
		if err := w.Process(ctx, req); err != nil && Retryable(err) {
			w.Logger.WithFields(w.fields(req, m.ID)).Error("notification delivery failed: " + err.Error())
			m.Nack()
			return
		} else if err != nil {
			w.Logger.WithFields(w.fields(req, m.ID)).Warn("dropping notification: " + err.Error())
		}
		m.Ack()
	})
}
