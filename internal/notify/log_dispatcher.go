package notify

import (
	"context"

	"github.com/rs/zerolog/log"
)

// LogDispatcher bildirimleri sadece loglar (development)
type LogDispatcher struct{}

// NewLogDispatcher yeni dispatcher oluşturur
func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{}
}

// Send bildirimi loglar
func (d *LogDispatcher) Send(_ context.Context, address string, template Template, params map[string]string) error {
	event := log.Info().
		Str("to", address).
		Str("template", string(template)).
		Str("subject", Subject(template))
	for k, v := range params {
		event = event.Str(k, v)
	}
	event.Msg("📨 Bildirim")
	return nil
}
