package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bitbucket.org/prajapati/wealth_backend/config"
	"bitbucket.org/prajapati/wealth_backend/docstore"
	"bitbucket.org/prajapati/wealth_backend/utils"
)

const (
	NotificationSubject = "Notification Reminder"

	NotificationQueued = "queued"
	NotificationSent   = "sent"
	NotificationFailed = "failed"
)

type NotificationRequest struct {
	ID          string    `json:"id"`
	ClientIDs   []string  `json:"clientIds"`
	RequestedBy string    `json:"requestedBy"`
	RequestedAt time.Time `json:"requestedAt"`
}

type NotificationRecord struct {
	Base
	ClientIDs   []string `json:"clientIds"`
	Recipients  []string `json:"recipients"`
	Status      string   `json:"status"`
	Error       string   `json:"error,omitempty"`
	RequestedBy string   `json:"requestedBy"`
	SentAt      string   `json:"sentAt,omitempty"`
}

type Mailer interface {
	Send(ctx context.Context, msg utils.MailMessage) error
}

type NotificationPublisher interface {
	Publish(ctx context.Context, req NotificationRequest) error
}

// PubSubPublisher queues requests on a Pub/Sub topic for cmd/notifier.
type PubSubPublisher struct {
	Topic string
}

func (p PubSubPublisher) Publish(ctx context.Context, req NotificationRequest) error {
	_, err := config.PublishJSON(ctx, p.Topic, req, map[string]string{"requestId": req.ID})
	return err
}

type NotificationResult struct {
	ID         string   `json:"id"`
	Queued     bool     `json:"queued"`
	Recipients []string `json:"recipients"`
}

type NotificationService struct {
	records   *Repository[NotificationRecord]
	clients   ClientLookup
	mailer    Mailer
	publisher NotificationPublisher
}

// NewNotificationService delivers inline when publisher is nil.
func NewNotificationService(store docstore.Store, clients ClientLookup, mailer Mailer, publisher NotificationPublisher) *NotificationService {
	return &NotificationService{
		records:   NewRepository[NotificationRecord](store, NotificationCollection),
		clients:   clients,
		mailer:    mailer,
		publisher: publisher,
	}
}

func NotificationBody(clientIDs []string) string {
	return fmt.Sprintf("This is a test notification for client IDs: %s.", strings.Join(clientIDs, ", "))
}

func cleanIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return utils.UniqueSlice(out)
}

// recipients collects the email addresses of the known clients in ids.
func (s *NotificationService) recipients(ctx context.Context, ids []string) ([]string, error) {
	clients, err := s.clients.LookupClients(ctx, ids)
	if err != nil {
		return nil, err
	}
	var emails []string
	for _, id := range ids {
		if c, ok := clients[id]; ok && strings.TrimSpace(c.Email) != "" {
			emails = append(emails, strings.TrimSpace(c.Email))
		}
	}
	return utils.UniqueSlice(emails), nil
}

// Request records a notification for the given clients and either queues it
// or sends it right away.
func (s *NotificationService) Request(ctx context.Context, clientIDs []string, requestedBy string) (*NotificationResult, error) {
	ids := cleanIDs(clientIDs)
	if len(ids) == 0 {
		return nil, ErrNoClientIDs
	}
	emails, err := s.recipients(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(emails) == 0 {
		return nil, ErrNoRecipients
	}
	id, err := s.records.CreateFields(ctx, docstore.Data{
		"clientIds":   ids,
		"recipients":  emails,
		"status":      NotificationQueued,
		"requestedBy": requestedBy,
	})
	if err != nil {
		return nil, err
	}
	req := NotificationRequest{ID: id, ClientIDs: ids, RequestedBy: requestedBy, RequestedAt: time.Now().UTC()}
	result := &NotificationResult{ID: id, Recipients: emails}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, req); err != nil {
			s.markFailed(ctx, id, err)
			return nil, fmt.Errorf("queue notification: %w", err)
		}
		result.Queued = true
		return result, nil
	}
	if err := s.Deliver(ctx, req); err != nil {
		return nil, err
	}
	return result, nil
}

// Deliver sends the mail for req and records the outcome.
func (s *NotificationService) Deliver(ctx context.Context, req NotificationRequest) error {
	ids := cleanIDs(req.ClientIDs)
	emails, err := s.recipients(ctx, ids)
	if err != nil {
		return err
	}
	if len(emails) == 0 {
		s.markFailed(ctx, req.ID, ErrNoRecipients)
		return ErrNoRecipients
	}
	if s.mailer == nil {
		err = ErrMailerDisabled
		s.markFailed(ctx, req.ID, err)
		return err
	}
	err = s.mailer.Send(ctx, utils.MailMessage{
		To:      emails,
		Subject: NotificationSubject,
		Body:    NotificationBody(ids),
	})
	if err != nil {
		s.markFailed(ctx, req.ID, err)
		return fmt.Errorf("send notification: %w", err)
	}
	if req.ID != "" {
		if err := s.records.Update(ctx, req.ID, docstore.Data{
			"status":     NotificationSent,
			"recipients": emails,
			"error":      "",
			"sentAt":     time.Now().UTC().Format(time.RFC3339),
		}); err != nil {
			config.LogError(config.GetLogger(), "NotificationService", "Deliver", "record sent", req.ID, err)
		}
	}
	return nil
}

// AlreadySent reports whether the request with id was delivered before.
func (s *NotificationService) AlreadySent(ctx context.Context, id string) (bool, error) {
	rec, err := s.records.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return rec.Status == NotificationSent, nil
}

func (s *NotificationService) Records() *Repository[NotificationRecord] {
	return s.records
}

func (s *NotificationService) markFailed(ctx context.Context, id string, cause error) {
	if id == "" {
		return
	}
	if err := s.records.Update(ctx, id, docstore.Data{"status": NotificationFailed, "error": cause.Error()}); err != nil {
		config.LogError(config.GetLogger(), "NotificationService", "markFailed", "record failure", id, err)
	}
}
