package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogMailer records messages in the log instead of sending them. It is the
// development default.
type LogMailer struct {
	from Sender
}

func NewLogMailer(from Sender) *LogMailer { return &LogMailer{from: from} }

func (m *LogMailer) Name() string { return "log" }

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	names := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		names = append(names, a.Filename)
	}
	zap.L().Info("notify: email not sent (log provider)",
		zap.String("from", m.from.String()),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("html_bytes", len(msg.HTML)),
		zap.Strings("attachments", names),
	)
	return nil
}
