// File: facade/metrics.go
// Author: momentics <momentics@gmail.com>
//
// metricsCollector keeps the hot-path counters Context.Stats() reports
// (§7 EXPANSION's "metrics" ambient stack requirement) as plain atomics,
// mirroring onto a control.MetricsRegistry snapshot on demand rather than
// touching the registry's mutex on every Send/Recv.

package facade

import (
	"sync/atomic"
	"time"

	"github.com/nanozmq/zmqcore/api"
	"github.com/nanozmq/zmqcore/control"
)

type metricsCollector struct {
	reg *control.MetricsRegistry

	messagesSent   atomic.Uint64
	messagesRecvd  atomic.Uint64
	bytesSent      atomic.Uint64
	bytesRecvd     atomic.Uint64
	activeSessions atomic.Int64
}

func newMetricsCollector() *metricsCollector {
	return &metricsCollector{reg: control.NewMetricsRegistry()}
}

func (m *metricsCollector) bumpSent(n int) {
	m.messagesSent.Add(1)
	m.bytesSent.Add(uint64(n))
}

func (m *metricsCollector) bumpRecvd(n int) {
	m.messagesRecvd.Add(1)
	m.bytesRecvd.Add(uint64(n))
}

func (m *metricsCollector) bumpSessions(delta int64) {
	m.activeSessions.Add(delta)
}

// snapshot builds an api.Metrics view and mirrors it into the registry
// so DumpState/debug probes stay consistent with Context.Stats().
func (m *metricsCollector) snapshot(startedAt time.Time) api.Metrics {
	s := api.Metrics{
		ActiveSessions: int(m.activeSessions.Load()),
		MessagesSent:   m.messagesSent.Load(),
		MessagesRecvd:  m.messagesRecvd.Load(),
		BytesSent:      m.bytesSent.Load(),
		BytesRecvd:     m.bytesRecvd.Load(),
		StartedAt:      startedAt,
	}
	m.reg.Set("messages_sent", s.MessagesSent)
	m.reg.Set("messages_recvd", s.MessagesRecvd)
	m.reg.Set("bytes_sent", s.BytesSent)
	m.reg.Set("bytes_recvd", s.BytesRecvd)
	m.reg.Set("active_sessions", s.ActiveSessions)
	return s
}
