// Package notify delivers alert notifications. The evaluator only depends on
// the Notifier interface; the SMTP implementation is wired when a relay is
// configured and the noop one otherwise.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/orwelltherazer/statelec/internal/alert/domain"
)

var ErrNoRecipient = errors.New("alert_recipient_missing")

type Notifier interface {
	Notify(ctx context.Context, recipient string, alert domain.Alert) error
}

// SMTPNotifier delivers alerts as plain-text mail through a relay.
type SMTPNotifier struct {
	addr string
	from string
	log  *zap.Logger
}

func NewSMTPNotifier(addr, from string, log *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		addr: addr,
		from: from,
		log:  log.Named("alert.notify"),
	}
}

func (n *SMTPNotifier) Notify(_ context.Context, recipient string, alert domain.Alert) error {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return ErrNoRecipient
	}

	var body strings.Builder
	fmt.Fprintf(&body, "From: %s\r\n", n.from)
	fmt.Fprintf(&body, "To: %s\r\n", recipient)
	fmt.Fprintf(&body, "Subject: [statelec] %s\r\n", alert.Title)
	body.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	body.WriteString(alert.Message)
	body.WriteString("\r\n")

	if err := smtp.SendMail(n.addr, nil, n.from, []string{recipient}, []byte(body.String())); err != nil {
		return fmt.Errorf("send alert mail: %w", err)
	}

	n.log.Info("alert mail sent",
		zap.String("type", alert.Type),
		zap.String("recipient", recipient),
	)
	return nil
}

// NoopNotifier drops notifications. Used when no SMTP relay is configured.
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, string, domain.Alert) error { return nil }
