package health

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingListener struct {
	mu     sync.Mutex
	states []State
}

func (r *recordingListener) OnStateChange(state State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
}

func (r *recordingListener) seen() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

type recordingUptime struct {
	mu    sync.Mutex
	calls int
	last  time.Duration
}

func (r *recordingUptime) SetUptime(uptime time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.last = uptime
}

func (r *recordingUptime) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestMonitorTransitions(t *testing.T) {
	m := NewMonitor(time.Hour, nil, zap.NewNop())
	listener := &recordingListener{}
	m.AddListener(listener)

	assert.Equal(t, StateStarting, m.GetStatus().State)
	assert.False(t, m.IsHealthy())

	m.MarkServing()
	assert.True(t, m.IsHealthy())

	// Duplicate transitions are not re-announced
	m.MarkServing()

	m.MarkDraining()
	assert.Equal(t, StateDraining, m.GetStatus().State)
	assert.False(t, m.IsHealthy())

	// Draining is terminal
	m.MarkServing()
	assert.Equal(t, StateDraining, m.GetStatus().State)

	assert.Equal(t, []State{StateStarting, StateServing, StateDraining}, listener.seen())
}

func TestMonitorLogsTransitions(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	m := NewMonitor(time.Hour, nil, zap.New(core))

	m.MarkServing()

	entries := logs.FilterMessage("service state changed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "starting", fields["from"])
	assert.Equal(t, "serving", fields["to"])
}

func TestMonitorStatusUptime(t *testing.T) {
	m := NewMonitor(time.Hour, nil, zap.NewNop())
	m.now = func() time.Time { return m.startedAt.Add(90 * time.Second) }

	status := m.GetStatus()
	assert.Equal(t, 90*time.Second, status.Uptime)
	assert.Equal(t, m.startedAt, status.StartedAt)
}

func TestMonitorHeartbeatRecordsUptime(t *testing.T) {
	uptime := &recordingUptime{}
	m := NewMonitor(5*time.Millisecond, uptime, zap.NewNop())

	m.Start()
	m.Start() // idempotent

	assert.Eventually(t, func() bool { return uptime.count() >= 2 }, time.Second, 5*time.Millisecond)

	m.Stop()
	m.Stop() // idempotent

	calls := uptime.count()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, uptime.count(), "heartbeat should not run after Stop")
}

func TestMonitorRecordsUptimeOnStart(t *testing.T) {
	uptime := &recordingUptime{}
	m := NewMonitor(time.Hour, uptime, zap.NewNop())

	m.Start()
	defer m.Stop()

	assert.Eventually(t, func() bool { return uptime.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestMonitorRestart(t *testing.T) {
	uptime := &recordingUptime{}
	m := NewMonitor(5*time.Millisecond, uptime, zap.NewNop())

	m.Start()
	m.Stop()

	before := uptime.count()
	m.Start()
	defer m.Stop()

	assert.Eventually(t, func() bool { return uptime.count() > before }, time.Second, 5*time.Millisecond)
}
