// Package notify commit sonrası gönderilen bildirimler.
// Gönderim hataları ledger'ı asla etkilemez; çağıran loglar ve geçer.
package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Template bildirim tipi
type Template string

const (
	TemplateThankYouReceived Template = "thank_you_received"
	TemplateTokensReceived   Template = "tokens_received"
	TemplateTokensSent       Template = "tokens_sent"
)

// Dispatcher bildirimi alıcıya iletir
type Dispatcher interface {
	Send(ctx context.Context, address string, template Template, params map[string]string) error
}

var subjects = map[Template]string{
	TemplateThankYouReceived: "Someone thanked you on ThankATech",
	TemplateTokensReceived:   "You received TOA tokens",
	TemplateTokensSent:       "Your TOA tokens were sent",
}

// Subject template'in konu satırı
func Subject(t Template) string {
	if s, ok := subjects[t]; ok {
		return s
	}
	return "ThankATech notification"
}

// Body parametrelerden düz metin gövde üretir (anahtar sıralı)
func Body(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, params[k])
	}
	return b.String()
}
