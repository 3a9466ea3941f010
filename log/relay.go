package log

import (
	"context"
	"encoding/json"
	"log/slog"
)

// LogMessageName is the host function guests call to emit a log record.
const LogMessageName = "log_message"

// Relay re-emits guest log records through a host logger.
type Relay struct {
	logger *slog.Logger
	guest  string
}

// NewRelay creates a Relay. Records are tagged with the guest module name.
func NewRelay(logger *slog.Logger, guest string) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{logger: logger, guest: guest}
}

// Handle decodes one LogMessageWire payload and logs it. Payloads that are
// not valid records are logged raw at Warn.
func (r *Relay) Handle(ctx context.Context, payload []byte) {
	var msg LogMessageWire
	if err := json.Unmarshal(payload, &msg); err != nil {
		r.logger.WarnContext(ctx, "guest log (raw)", "guest", r.guest, "payload", string(payload))
		return
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(msg.Level)); err != nil {
		level = slog.LevelInfo
	}
	if !r.logger.Enabled(ctx, level) {
		return
	}

	attrs := make([]slog.Attr, 0, len(msg.Attrs)+2)
	attrs = append(attrs, slog.String("guest", r.guest))
	if msg.Context.RequestID != "" {
		attrs = append(attrs, slog.String("request_id", msg.Context.RequestID))
	}
	for _, a := range msg.Attrs {
		attrs = append(attrs, fromLogAttrWire(a))
	}
	r.logger.LogAttrs(ctx, level, msg.Message, attrs...)
}
