package notify

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog/log"
)

// ResendDispatcher bildirimleri Resend API üzerinden e-posta olarak gönderir
type ResendDispatcher struct {
	client *resend.Client
	from   string
}

// NewResendDispatcher yeni dispatcher oluşturur
func NewResendDispatcher(client *resend.Client, from string) *ResendDispatcher {
	return &ResendDispatcher{client: client, from: from}
}

// Send e-postayı gönderir
func (d *ResendDispatcher) Send(ctx context.Context, address string, template Template, params map[string]string) error {
	if address == "" {
		return fmt.Errorf("alıcı adresi boş")
	}

	req := &resend.SendEmailRequest{
		From:    d.from,
		To:      []string{address},
		Subject: Subject(template),
		Text:    Body(params),
		Tags:    []resend.Tag{{Name: "template", Value: string(template)}},
	}

	sent, err := d.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("e-posta gönderilemedi: %w", err)
	}

	log.Debug().Str("email_id", sent.Id).Str("template", string(template)).Msg("📧 E-posta gönderildi")
	return nil
}
