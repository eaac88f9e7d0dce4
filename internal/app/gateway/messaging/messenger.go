// Package messaging defines the outbound notification contract.
//
// The billing core only consumes this interface; the actual transport
// (WhatsApp, SMS, email) lives outside the engine. Sends are
// fire-and-forget: callers log failures and never roll back billing
// state because a notice did not go out.
package messaging

import (
	"context"

	"go.uber.org/zap"
)

// Messenger delivers a free-text notice to a target address.
type Messenger interface {
	SendMessage(ctx context.Context, target, text string) error
}

// LogMessenger is the default no-op transport: it records the notice in
// the application log and reports success.
type LogMessenger struct {
	Log *zap.Logger
}

func NewLogMessenger(logger *zap.Logger) *LogMessenger {
	return &LogMessenger{Log: logger}
}

func (m *LogMessenger) SendMessage(ctx context.Context, target, text string) error {
	m.Log.Info("message (no transport configured)",
		zap.String("target", target),
		zap.String("text", text))
	return nil
}

var _ Messenger = (*LogMessenger)(nil)
