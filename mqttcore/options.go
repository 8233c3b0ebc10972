package mqttcore

import (
	"io"
	"log/slog"
)

// Option configures a Connection at construction time, following the
// functional-options pattern the teacher uses for its client Options
// (options.go) and gonzalop-mq's clientOptions.
type Option func(*Connection)

// WithLogger attaches a structured logger. Unset, a Connection logs to
// a discarding handler, matching gonzalop-mq's default of silently
// dropping client-event logs when no *slog.Logger is supplied.
func WithLogger(l *slog.Logger) Option {
	return func(c *Connection) { c.logger = l }
}

// WithMetrics attaches a prometheus-backed Metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(c *Connection) { c.metrics = m }
}

// WithReceiveMaximum sets this endpoint's own ReceiveMaximum, i.e. the
// limit enforced against the peer's inbound QoS>0 PUBLISH traffic. The
// host is still responsible for sending this value in its own
// CONNECT/CONNACK properties; this option only configures local
// enforcement to match.
func WithReceiveMaximum(n uint16) Option {
	return func(c *Connection) { c.recvReceiveMax.setLimit(n) }
}

// WithTopicAliasMaximum sets how many inbound topic aliases this
// endpoint is willing to track.
func WithTopicAliasMaximum(n uint16) Option {
	return func(c *Connection) { c.aliasRecv = newAliasRecv(n) }
}

// WithAutoPubResponse controls whether PUBACK/PUBREC/PUBCOMP are
// generated automatically on receipt of the matching inbound packet
// (spec §6.1's set_auto_pub_response). Defaults to true.
func WithAutoPubResponse(auto bool) Option {
	return func(c *Connection) { c.autoPubResponse = auto }
}

// WithAutoPingResponse controls whether PINGRESP is generated
// automatically on receipt of PINGREQ (spec §6.1's
// set_auto_ping_response). Defaults to true.
func WithAutoPingResponse(auto bool) Option {
	return func(c *Connection) { c.autoPingResponse = auto }
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
