package leave

import (
	"context"
	"log/slog"
	"time"
)

// =============================================================================
// EXTERNAL HOOKS - Notification dispatch and compliance audit
// =============================================================================
//
// Both hooks are fire-and-forget: they run after the authoritative state
// transition has been persisted, and a delivery failure is logged, never
// rolled back into the triggering operation.

// Event types passed to the notification dispatcher.
const (
	EventRequestSubmitted = "leave.request.submitted"
	EventRequestApproved  = "leave.request.approved"
	EventRequestRejected  = "leave.request.rejected"
)

// AudienceApprovers is the recipient id used when a submission needs to
// reach whoever reviews requests. Resolution of the audience to concrete
// users belongs to the dispatcher implementation.
const AudienceApprovers = "approvers"

// Notifier delivers an event to a recipient. Implementations are external;
// the engine only needs the call contract.
type Notifier interface {
	Notify(ctx context.Context, recipientID, eventType string, payload map[string]any) error
}

// AuditEntry records a state-mutating operation for compliance.
type AuditEntry struct {
	Entity   string
	EntityID string
	Action   string
	Before   map[string]any
	After    map[string]any
	Actor    string
	At       time.Time
}

// AuditLog records audit entries, best-effort.
type AuditLog interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// =============================================================================
// DEFAULT IMPLEMENTATIONS
// =============================================================================

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string, string, map[string]any) error { return nil }

// NopAuditLog drops every entry.
type NopAuditLog struct{}

func (NopAuditLog) Record(context.Context, AuditEntry) error { return nil }

// LogNotifier writes notifications to a structured logger. Useful as the
// default dispatcher until a real delivery channel is wired in.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) Notify(_ context.Context, recipientID, eventType string, payload map[string]any) error {
	n.Logger.Info("notification",
		slog.String("recipient", recipientID),
		slog.String("event", eventType),
		slog.Any("payload", payload))
	return nil
}

// LogAuditLog writes audit entries to a structured logger.
type LogAuditLog struct {
	Logger *slog.Logger
}

func (a *LogAuditLog) Record(_ context.Context, entry AuditEntry) error {
	a.Logger.Info("audit",
		slog.String("entity", entry.Entity),
		slog.String("entity_id", entry.EntityID),
		slog.String("action", entry.Action),
		slog.String("actor", entry.Actor))
	return nil
}
