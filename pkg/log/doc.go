// Package log captures protocol-level events from the subscription layer
// as a machine-readable trace.
//
// Protocol capture is deliberately separate from operational logging
// (slog): operational logs tell a human what the process is doing, while a
// capture records every frame, service exchange, notification, and state
// transition on a connection so traffic can be replayed and inspected
// later. Events carry the capture layer (stack, lifecycle, service), a
// direction, a category, and one category-specific payload.
//
// # Choosing a sink
//
// The facades accept any Logger. SlogAdapter mirrors events onto slog at
// debug level for development:
//
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
// FileLogger appends CBOR records to a .ulog capture file:
//
//	fl, err := log.NewFileLogger("/var/log/uamon/server.ulog")
//	if err != nil {
//	    return err
//	}
//	defer fl.Close()
//	cfg.ProtocolLogger = fl
//
// NewMultiLogger combines sinks when both are wanted at once.
//
// # Reading captures back
//
// Reader streams events out of a .ulog file, optionally through a Filter
// (connection, direction, layer, category, time window, application URI,
// subscription). The uamon-log command wraps this for viewing, filtering,
// statistics, and JSON export.
package log
