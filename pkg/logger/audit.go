package logger

import (
	"context"
	"log/slog"
	"time"
)

// AuditEvent is one line of the structured audit stream.
type AuditEvent struct {
	EventType string
	UserID    string
	Action    string
	Success   bool
	Reason    string
	Metadata  map[string]string
}

// AuditLogger writes audit events as structured log lines.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

// Log writes event at info level, or warn when it did not succeed.
func (al *AuditLogger) Log(ctx context.Context, event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "rbac"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.UserID != "" {
		attrs = append(attrs, slog.String("user_id", event.UserID))
	}
	if event.Action != "" {
		attrs = append(attrs, slog.String("action", event.Action))
	}
	if event.Reason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.Reason))
	}
	for key, val := range event.Metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(ctx, level, "audit", attrs...)
}

// LogRoleChange records the outcome of a role assignment.
func (al *AuditLogger) LogRoleChange(ctx context.Context, userID, from, to string, err error) {
	event := AuditEvent{
		EventType: "role_change",
		UserID:    userID,
		Success:   err == nil,
		Metadata:  map[string]string{"from_role": from, "to_role": to},
	}
	if err != nil {
		event.Reason = err.Error()
	}
	al.Log(ctx, event)
}
