// Package notifier delivers outbound account messages: verification links
// after registration and password-reset links.
package notifier

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
	"github.com/dmitrijs2005/gophaccounts/internal/logging"
	"github.com/dmitrijs2005/gophaccounts/internal/server/config"
)

// Message is a single outbound mail. TextBody is an optional plain-text
// alternative of HTMLBody.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Notifier sends one message. Implementations must honor ctx cancellation
// and report failures wrapped with common.ErrNotifier.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// New builds the notifier selected by cfg.Notifier.
func New(cfg *config.Config, l logging.Logger) (Notifier, error) {
	switch cfg.Notifier {
	case config.NotifierSMTP:
		return NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom), nil
	case config.NotifierLog:
		return NewLogNotifier(l), nil
	}
	return nil, fmt.Errorf("unknown notifier %q", cfg.Notifier)
}

func wrap(err error) error {
	return fmt.Errorf("%w: %w", common.ErrNotifier, err)
}
