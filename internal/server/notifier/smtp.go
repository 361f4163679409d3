package notifier

import (
	"context"
	"errors"

	"gopkg.in/gomail.v2"
)

// sender is the part of *gomail.Dialer used here.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPNotifier struct {
	dialer sender
	from   string
}

func NewSMTPNotifier(host string, port int, username, password, from string) *SMTPNotifier {
	return &SMTPNotifier{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send delivers msg. gomail has no context support, so delivery runs in its
// own goroutine and Send returns as soon as ctx is done. A delivery that is
// abandoned this way may still complete in the background.
func (n *SMTPNotifier) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return wrap(errors.New("no recipient specified"))
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTMLBody)
	if msg.TextBody != "" {
		m.AddAlternative("text/plain", msg.TextBody)
	}

	done := make(chan error, 1)
	go func() {
		done <- n.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return wrap(err)
		}
		return nil
	case <-ctx.Done():
		return wrap(ctx.Err())
	}
}
