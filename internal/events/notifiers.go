package events

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/noah-isme/repairshop-api/internal/db"
	dbgen "github.com/noah-isme/repairshop-api/internal/db/gen"
	"github.com/noah-isme/repairshop-api/internal/obs"
)

// LogNotifier writes one structured log line per event.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(_ context.Context, event dbgen.DomainEvent) error {
	n.Logger.Info().
		Str("event_id", db.UUIDString(event.ID)).
		Str("topic", event.Topic).
		Str("aggregate_id", db.UUIDString(event.AggregateID)).
		RawJSON("payload", event.Payload).
		Msg("domain_event")
	return nil
}

// MetricsNotifier counts events per topic.
type MetricsNotifier struct {
	Metrics *obs.DomainMetrics
}

// Notify implements Notifier.
func (n MetricsNotifier) Notify(_ context.Context, event dbgen.DomainEvent) error {
	if n.Metrics == nil {
		return nil
	}
	n.Metrics.DomainEvents.WithLabelValues(event.Topic).Inc()
	return nil
}
