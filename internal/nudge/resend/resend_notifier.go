package resend

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"

	"github.com/brk3/habitflow/internal/nudge"
)

const htmlTemplate = `
<p>{{.Body}}</p>
<p><small>Scheduled for {{.At.Format "15:04"}}.</small></p>
`

type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Notifier e-mails reminders through Resend.
type Notifier struct {
	emails emailSender
	from   string
	to     string
	tmpl   *template.Template
}

var _ nudge.Notifier = (*Notifier)(nil)

func New(apiKey, from, to string) *Notifier {
	return newNotifier(resend.NewClient(apiKey).Emails, from, to)
}

func newNotifier(emails emailSender, from, to string) *Notifier {
	return &Notifier{
		emails: emails,
		from:   from,
		to:     to,
		tmpl:   template.Must(template.New("email").Parse(htmlTemplate)),
	}
}

func (n *Notifier) Notify(ctx context.Context, r nudge.Reminder) error {
	var buf bytes.Buffer
	if err := n.tmpl.Execute(&buf, r); err != nil {
		return fmt.Errorf("render reminder: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{n.to},
		Subject: r.Title,
		Html:    buf.String(),
	}
	if _, err := n.emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send reminder for %q: %w", r.HabitName, err)
	}
	return nil
}
