package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	apperrors "github.com/erinb-maker-radio/banwell-wholesale/pkg/errors"
	"github.com/erinb-maker-radio/banwell-wholesale/pkg/httpclient"
)

// EmailConfig configures the transactional email sender.
type EmailConfig struct {
	BaseURL   string
	APIKey    string
	FromEmail string
	FromName  string
}

// EmailSender delivers email intents through a SendGrid-compatible mail API.
// When no API key is configured, sends are logged as skipped by the dispatcher
// caller via the returned nil (the send is a no-op).
type EmailSender struct {
	cfg    EmailConfig
	client *httpclient.Client
}

// NewEmailSender creates an email sender using the shared retrying HTTP client.
func NewEmailSender(cfg EmailConfig, client *httpclient.Client) *EmailSender {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.sendgrid.com"
	}
	if client == nil {
		client = httpclient.New(httpclient.DefaultConfig())
	}
	return &EmailSender{cfg: cfg, client: client}
}

// Name returns the name of this sender.
func (s *EmailSender) Name() string {
	return "email"
}

type mailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailPersonalization struct {
	To []mailAddress `json:"to"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type mailPayload struct {
	Personalizations []mailPersonalization `json:"personalizations"`
	From             mailAddress           `json:"from"`
	Subject          string                `json:"subject"`
	Content          []mailContent         `json:"content"`
}

// Send posts the intent as a plain-text transactional email. Intents with no
// recipient or with email disabled are silently skipped.
func (s *EmailSender) Send(ctx context.Context, intent *Intent) error {
	if s.cfg.APIKey == "" || intent.Recipient == "" {
		return nil
	}

	payload := mailPayload{
		Personalizations: []mailPersonalization{
			{To: []mailAddress{{Email: intent.Recipient}}},
		},
		From:    mailAddress{Email: s.cfg.FromEmail, Name: s.cfg.FromName},
		Subject: intent.Subject,
		Content: []mailContent{{Type: "text/plain", Value: intent.Body}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return apperrors.Wrap(err, "marshal mail payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/v3/mail/send", bytes.NewReader(body))
	if err != nil {
		return apperrors.Wrap(err, "build mail request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return apperrors.ExternalService("sendgrid", err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return httpclient.ParseResponseError(resp, "sendgrid")
	}
	return nil
}
