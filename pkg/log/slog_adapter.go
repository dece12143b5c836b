package log

import (
	"context"
	"log/slog"
)

// SlogAdapter mirrors protocol events onto an slog.Logger at debug level,
// mainly for watching traffic during development.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter returns an adapter emitting through logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log emits the event as a debug record with flattened attributes.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("conn_id", event.ConnectionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	if event.ApplicationURI != "" {
		attrs = append(attrs, slog.String("application_uri", event.ApplicationURI))
	}

	switch {
	case event.Frame != nil:
		attrs = append(attrs,
			slog.Int("frame_size", event.Frame.Size),
			slog.Bool("truncated", event.Frame.Truncated),
		)
	case event.Service != nil:
		attrs = append(attrs,
			slog.Uint64("request_id", uint64(event.Service.RequestID)),
			slog.String("msg_type", event.Service.Type.String()),
			slog.String("service", event.Service.Service.String()),
		)
		if event.Service.ServiceResult != nil {
			attrs = append(attrs, slog.String("result", event.Service.ServiceResult.String()))
		}
		if event.Service.SubscriptionID != nil {
			attrs = append(attrs, slog.Uint64("subscription", uint64(*event.Service.SubscriptionID)))
		}
		if event.Service.ProcessingTime != nil {
			attrs = append(attrs, slog.Duration("processing_time", *event.Service.ProcessingTime))
		}
	case event.Notification != nil:
		attrs = append(attrs,
			slog.String("kind", event.Notification.Kind.String()),
			slog.Uint64("subscription", uint64(event.Notification.SubscriptionID)),
			slog.Uint64("item", uint64(event.Notification.MonitoredItemID)),
		)
		if event.Notification.Dropped {
			attrs = append(attrs, slog.Bool("dropped", true))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if event.Error.Code != nil {
			attrs = append(attrs, slog.String("error_code", event.Error.Code.String()))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
