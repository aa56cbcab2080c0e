package notifier

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingSender struct {
	name string
	sent []Intent
	err  error
}

func (s *recordingSender) Name() string { return s.name }

func (s *recordingSender) Send(_ context.Context, intent *Intent) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, *intent)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestDispatcher_RoutesByChannel(t *testing.T) {
	push := &recordingSender{name: "push"}
	email := &recordingSender{name: "email"}
	d := NewDispatcher(testLogger(), map[string]Sender{
		ChannelPush:  push,
		ChannelEmail: email,
	})

	d.Dispatch(context.Background(), []Intent{
		{Channel: ChannelPush, Subject: "New order"},
		{Channel: ChannelEmail, Recipient: "shop@example.com", Subject: "Order shipped"},
		{Channel: ChannelPush, Subject: "Payment received"},
	})

	assert.Len(t, push.sent, 2)
	assert.Len(t, email.sent, 1)
	assert.Equal(t, "Order shipped", email.sent[0].Subject)
}

func TestDispatcher_SwallowsSenderFailures(t *testing.T) {
	failing := &recordingSender{name: "push", err: errors.New("gateway down")}
	email := &recordingSender{name: "email"}
	d := NewDispatcher(testLogger(), map[string]Sender{
		ChannelPush:  failing,
		ChannelEmail: email,
	})

	// Must not panic or stop; the email intent still goes out.
	d.Dispatch(context.Background(), []Intent{
		{Channel: ChannelPush, Subject: "New order"},
		{Channel: ChannelEmail, Recipient: "shop@example.com", Subject: "Order shipped"},
	})

	assert.Len(t, email.sent, 1)
}

func TestDispatcher_SkipsUnknownChannel(t *testing.T) {
	push := &recordingSender{name: "push"}
	d := NewDispatcher(testLogger(), map[string]Sender{ChannelPush: push})

	d.Dispatch(context.Background(), []Intent{
		{Channel: "sms", Subject: "ignored"},
		{Channel: ChannelPush, Subject: "delivered"},
	})

	assert.Len(t, push.sent, 1)
	assert.Equal(t, "delivered", push.sent[0].Subject)
}
