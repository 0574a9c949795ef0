// Package log emits gadget log lines to the host.
//
// The host call is fire-and-forget: nothing is returned and a message
// that cannot be passed to the host is dropped.
//
// Gadgets that prefer structured logging can route a zap logger to the
// host:
//
//	logger := log.NewLogger(env)
//	logger.Info("started", zap.Int("maps", 2))
package log
