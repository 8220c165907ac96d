package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"bitbucket.org/prajapati/wealth_backend/config"
	"bitbucket.org/prajapati/wealth_backend/docstore"
	"bitbucket.org/prajapati/wealth_backend/models"
	"bitbucket.org/prajapati/wealth_backend/utils"
	"github.com/gin-gonic/gin"
)

type countingMailer struct {
	mu   sync.Mutex
	sent int
	err  error
}

func (m *countingMailer) Send(context.Context, utils.MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent++
	return nil
}

type capturePublisher struct {
	requests []models.NotificationRequest
}

func (p *capturePublisher) Publish(_ context.Context, req models.NotificationRequest) error {
	p.requests = append(p.requests, req)
	return nil
}

type fixture struct {
	repos     *models.Repositories
	mailer    *countingMailer
	publisher *capturePublisher
	worker    *NotificationWorker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := docstore.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })
	mailer := &countingMailer{}
	publisher := &capturePublisher{}
	repos := models.NewRepositories(store, models.Dependencies{
		Sessions:  models.NewMemorySessionStore(),
		Mailer:    mailer,
		Publisher: publisher,
	})
	return &fixture{
		repos:     repos,
		mailer:    mailer,
		publisher: publisher,
		worker:    NewNotificationWorker(repos.Notifications, config.GetLogger()),
	}
}

// queue records a notification for one client with an email and returns
// the request the API would have published.
func (f *fixture) queue(t *testing.T) models.NotificationRequest {
	t.Helper()
	ctx := context.Background()
	client, err := f.repos.Clients.CreateClient(ctx, docstore.Data{"name": "Asha", "email": "asha@example.com"})
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	result, err := f.repos.Notifications.Request(ctx, []string{client.ID}, "admin")
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if !result.Queued || len(f.publisher.requests) != 1 {
		t.Fatalf("request was not queued: %+v", result)
	}
	return f.publisher.requests[0]
}

func push(t *testing.T, handler gin.HandlerFunc, data []byte) int {
	t.Helper()
	var envelope PushEnvelope
	envelope.Message.ID = "m-1"
	envelope.Message.Data = data
	body, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/push", handler)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/push", bytes.NewReader(body)))
	return w.Code
}

func TestProcess_DeliversOnce(t *testing.T) {
	f := newFixture(t)
	req := f.queue(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := f.worker.Process(ctx, req); err != nil {
			t.Fatalf("Process #%d: %v", i+1, err)
		}
	}
	if f.mailer.sent != 1 {
		t.Fatalf("sent = %d, want 1", f.mailer.sent)
	}
	rec, err := f.repos.Notifications.Records().Get(ctx, req.ID)
	if err != nil {
		t.Fatalf("Get record: %v", err)
	}
	if rec.Status != models.NotificationSent {
		t.Fatalf("status = %q", rec.Status)
	}
}

func TestPushHandler(t *testing.T) {
	f := newFixture(t)
	req := f.queue(t)
	valid, _ := json.Marshal(req)
	unknown, _ := json.Marshal(models.NotificationRequest{ID: "missing", ClientIDs: []string{"x"}})

	cases := []struct {
		name    string
		data    []byte
		mailErr error
		want    int
	}{
		{"malformed payload is dropped", []byte("{"), nil, http.StatusNoContent},
		{"empty request is dropped", []byte("{}"), nil, http.StatusNoContent},
		{"unknown request is dropped", unknown, nil, http.StatusNoContent},
		{"relay failure is retried", valid, errors.New("smtp down"), http.StatusInternalServerError},
		{"delivery acks", valid, nil, http.StatusNoContent},
		{"redelivery acks without sending", valid, nil, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f.mailer.err = tc.mailErr
			if got := push(t, f.worker.PushHandler(), tc.data); got != tc.want {
				t.Fatalf("status = %d, want %d", got, tc.want)
			}
		})
	}
	if f.mailer.sent != 1 {
		t.Fatalf("sent = %d, want 1", f.mailer.sent)
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{docstore.ErrNotFound, false},
		{models.ErrNoRecipients, false},
		{ErrDeliveryInProgress, true},
		{errors.New("smtp down"), true},
	}
	for _, tc := range cases {
		if got := Retryable(tc.err); got != tc.want {
			t.Fatalf("Retryable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
