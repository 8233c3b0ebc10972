package mqttcore

import "github.com/prometheus/client_golang/prometheus"

// Metrics is an optional set of counters/gauges a host can attach via
// WithMetrics. Grounded on the teacher's package-level Stat type
// (stat.go): same prometheus.Counter/Gauge shape, scoped per-connection
// here instead of process-wide.
type Metrics struct {
	PacketsSent              prometheus.Counter
	PacketsReceived          prometheus.Counter
	BytesSent                prometheus.Counter
	BytesReceived            prometheus.Counter
	ReceiveMaximumRejections prometheus.Counter
	InflightEntries          prometheus.Gauge
}

// NewMetrics builds a Metrics with the given namespace, unregistered.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		PacketsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "packets_sent_total", Help: "control packets passed through Send on this connection (driver-generated acks, PINGRESP and DISCONNECT are not counted)",
		}),
		PacketsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "packets_received_total", Help: "control packets received on this connection",
		}),
		BytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "bytes_sent_total", Help: "encoded bytes of packets passed through Send on this connection",
		}),
		BytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "bytes_received_total", Help: "bytes fed into Recv on this connection",
		}),
		ReceiveMaximumRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "receive_maximum_rejections_total", Help: "sends or receives rejected by receive-maximum flow control",
		}),
		InflightEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "inflight_entries", Help: "QoS>0 PUBLISH/PUBREL exchanges currently outstanding",
		}),
	}
}

// Register registers every collector with reg. Callers that share one
// registry across many connections should pass distinct namespaces.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.PacketsSent, m.PacketsReceived, m.BytesSent, m.BytesReceived,
		m.ReceiveMaximumRejections, m.InflightEntries,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
