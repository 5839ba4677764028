package messaging

import (
	"errors"
	"fmt"
	"net/http"
)

// InboundMessage is the parsed WhatsApp webhook payload. From doubles as the
// patient identifier throughout the system.
type InboundMessage struct {
	MessageSid string
	From       string
	To         string
	Body       string
}

// ParseWebhook decodes the provider's form-encoded webhook. From is the only
// required field; an empty body still drives the state machine (it re-prompts).
func ParseWebhook(r *http.Request) (*InboundMessage, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("messaging: parse webhook form: %w", err)
	}
	msg := &InboundMessage{
		MessageSid: r.PostForm.Get("MessageSid"),
		From:       r.PostForm.Get("From"),
		To:         r.PostForm.Get("To"),
		Body:       r.PostForm.Get("Body"),
	}
	if msg.From == "" {
		return nil, errors.New("messaging: webhook missing From")
	}
	return msg, nil
}

// buildAbsoluteURL reconstructs the public URL the provider signed, honoring
// the proxy headers set by the usual WhatsApp webhook deployments.
func buildAbsoluteURL(r *http.Request) string {
	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		if r.TLS != nil {
			scheme = "https"
		} else {
			scheme = "http"
		}
	}
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	return scheme + "://" + host + r.URL.RequestURI()
}
