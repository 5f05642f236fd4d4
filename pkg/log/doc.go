// Package log captures the MMI and RPC traffic of a PTS session.
//
// Every MMI the test controller sends, every answer the adapter returns and
// every control-plane RPC issued on its behalf can be recorded as an Event.
// This is separate from operational logging (slog): the capture is a complete,
// machine-readable trace of a session that can be replayed or filtered later.
//
// # Basic Usage
//
//	// Console while developing
//	logger := log.NewSlogAdapter(slog.Default())
//
//	// Binary capture for CI runs
//	logger, _ := log.NewFileLogger("/tmp/hfp.mlog")
//
//	// Both
//	logger := log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Events are captured at three layers:
//   - MMI: directives from the PTS and the answers returned (MMIEvent)
//   - RPC: calls to the device-under-test control plane (RPCEvent)
//   - Proxy: adapter state, such as the current connection handle (StateChangeEvent)
//
// Errors at any layer use ErrorEventData.
//
// # File Format
//
// Capture files are a stream of CBOR-encoded events with integer keys.
package log
