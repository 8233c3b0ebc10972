// Package mqttcore implements the per-connection MQTT state machine: the
// recv-byte and send-packet pipelines, the inflight store, the topic-alias
// maps, the packet-identifier allocator, receive-maximum flow control, and
// keep-alive timing. The driver performs no I/O; it consumes bytes and
// packet-submission requests and returns an ordered slice of Events
// describing what the host must do.
package mqttcore
