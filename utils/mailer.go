package utils

import (
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"
)

type MailMessage struct {
	To      []string
	Subject string
	Body    string
}

// SMTPMailer sends plain-text mail with the server's own relay credentials.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (m *SMTPMailer) Send(ctx context.Context, msg MailMessage) error {
	if m == nil || m.Host == "" || m.From == "" {
		return errors.New("smtp relay is not configured")
	}
	if len(msg.To) == 0 {
		return errors.New("mail has no recipients")
	}

	message := mail.NewMsg()
	if err := message.From(m.From); err != nil {
		return fmt.Errorf("invalid sender %q: %w", m.From, err)
	}
	if err := message.To(msg.To...); err != nil {
		return fmt.Errorf("invalid recipients: %w", err)
	}
	message.Subject(msg.Subject)
	message.SetBodyString(mail.TypeTextPlain, msg.Body)

	opts := []mail.Option{
		mail.WithPort(m.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.Username),
			mail.WithPassword(m.Password),
		)
	}
	client, err := mail.NewClient(m.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, message); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
