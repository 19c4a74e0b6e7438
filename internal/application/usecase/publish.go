package usecase

import (
	"context"
	"log/slog"

	"github.com/saaayf/smartmedishop/internal/domain/port"
	"github.com/saaayf/smartmedishop/pkg/events"
)

// publishEvents forwards events once the state change they describe has been
// stored. A publishing failure is logged, not returned: the stored record
// remains the source of truth.
func publishEvents(ctx context.Context, publisher port.EventPublisher, logger *slog.Logger, evts []events.DomainEvent) {
	if publisher == nil || len(evts) == 0 {
		return
	}
	if err := publisher.Publish(ctx, evts...); err != nil {
		logger.Error("failed to publish events",
			slog.Int("count", len(evts)),
			slog.String("error", err.Error()),
		)
	}
}
