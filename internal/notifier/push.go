package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "github.com/erinb-maker-radio/banwell-wholesale/pkg/errors"
	"github.com/erinb-maker-radio/banwell-wholesale/pkg/httpclient"
)

// PushConfig configures the owner push-notification sender.
type PushConfig struct {
	BaseURL string
	Token   string
	Source  string
}

// PushSender posts push notifications to the owner's notification gateway.
type PushSender struct {
	cfg    PushConfig
	client *httpclient.Client
}

// NewPushSender creates a push sender using the shared retrying HTTP client.
func NewPushSender(cfg PushConfig, client *httpclient.Client) *PushSender {
	if client == nil {
		client = httpclient.New(httpclient.DefaultConfig())
	}
	return &PushSender{cfg: cfg, client: client}
}

// Name returns the name of this sender.
func (s *PushSender) Name() string {
	return "push"
}

type pushPayload struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
	Source   string `json:"source"`
	URL      string `json:"url,omitempty"`
	URLLabel string `json:"url_label,omitempty"`
}

// Send posts the intent to the gateway's alert endpoint.
func (s *PushSender) Send(ctx context.Context, intent *Intent) error {
	priority := intent.Priority
	if priority == "" {
		priority = PriorityNormal
	}

	payload := pushPayload{
		Title:    intent.Subject,
		Message:  intent.Body,
		Priority: priority,
		Source:   s.cfg.Source,
		URL:      intent.URL,
		URLLabel: intent.URLLabel,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return apperrors.Wrap(err, "marshal push payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/alerts", bytes.NewReader(body))
	if err != nil {
		return apperrors.Wrap(err, "build push request")
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return apperrors.ExternalService("push-gateway", err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return apperrors.ExternalService("push-gateway", fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}
	return nil
}
