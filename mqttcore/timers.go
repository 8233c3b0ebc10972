package mqttcore

// pendingTimers tracks which of the three keep-alive timers currently
// have an outstanding RequestTimerReset the host hasn't been told to
// cancel yet, so notify_closed can emit a RequestTimerCancel for each
// (spec §4.8, §4.9).
type pendingTimers map[TimerKind]bool

func (p pendingTimers) set(k TimerKind)        { p[k] = true }
func (p pendingTimers) clear(k TimerKind)      { delete(p, k) }
func (p pendingTimers) isSet(k TimerKind) bool { return p[k] }

func keepAliveMillis(seconds uint16) int64 { return int64(seconds) * 1000 }

// pingTimeoutMillis is the 1.5x keep-alive grace period the MQTT spec
// allows before a missing PINGRESP (client) or missing traffic
// (server) is treated as a dead connection (spec §4.9).
func pingTimeoutMillis(seconds uint16) int64 {
	return int64(seconds) * 1500
}
