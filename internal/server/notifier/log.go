package notifier

import (
	"context"

	"github.com/dmitrijs2005/gophaccounts/internal/logging"
)

// LogNotifier writes messages to the log instead of mailing them. It is meant
// for local development; the body carries live keys and is only logged at
// debug level.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(l logging.Logger) *LogNotifier {
	return &LogNotifier{logger: l}
}

func (n *LogNotifier) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return wrap(err)
	}
	n.logger.Info(ctx, "mail suppressed", "to", msg.To, "subject", msg.Subject)
	n.logger.Debug(ctx, "mail body", "to", msg.To, "body", msg.TextBody)
	return nil
}
