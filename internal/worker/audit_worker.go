package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/resource-api/internal/events"
)

// StartAuditWorker subscribes an audit-log handler to every lifecycle event.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger) {
	if dispatcher == nil || logger == nil {
		return
	}
	handler := auditHandler(logger)
	for _, typ := range []events.EventType{
		events.EventResourceCreated,
		events.EventResourceUpdated,
		events.EventResourceReplaced,
		events.EventResourceDeleted,
		events.EventLoginSucceeded,
		events.EventLogout,
	} {
		dispatcher.Subscribe(typ, handler)
	}
}

func auditHandler(logger *zap.Logger) events.EventHandler {
	return func(_ context.Context, event events.Event) error {
		logger.Info("audit",
			zap.String("event", string(event.Type)),
			zap.String("resource_type", event.ResourceType),
			zap.String("resource_key", event.ResourceKey),
			zap.String("actor_id", event.ActorID),
			zap.Time("at", event.Timestamp),
		)
		return nil
	}
}
