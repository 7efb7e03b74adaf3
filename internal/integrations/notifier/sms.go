package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// SMSWebhook отправляет SMS через HTTP webhook провайдера
type SMSWebhook struct {
	url        string
	token      string
	httpClient *http.Client
	log        Logger
}

type smsPayload struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// NewSMSWebhook создает отправителя SMS
// token необязателен и передается как Bearer
func NewSMSWebhook(url, token string, timeout time.Duration, log Logger) *SMSWebhook {
	return &SMSWebhook{
		url:   strings.TrimSpace(url),
		token: strings.TrimSpace(token),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Send отправляет сообщение. false - сообщение не доставлено провайдеру
func (s *SMSWebhook) Send(ctx context.Context, to string, body string) bool {
	raw, err := json.Marshal(smsPayload{To: to, Body: body})
	if err != nil {
		s.log.Warn("SMSWebhook: failed to encode payload for %s: %v", to, err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(raw))
	if err != nil {
		s.log.Warn("SMSWebhook: failed to create request: %v", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.log.Warn("SMSWebhook: request to %s failed: %v", to, err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.log.Warn("SMSWebhook: provider returned status %d for %s", resp.StatusCode, to)
		return false
	}

	return true
}
