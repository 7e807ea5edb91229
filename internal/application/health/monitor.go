package health

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// State represents the lifecycle state of the service
type State string

const (
	StateStarting State = "starting"
	StateServing  State = "serving"
	StateDraining State = "draining"
)

// Listener is notified on every state transition
type Listener interface {
	OnStateChange(state State)
}

// UptimeRecorder receives the uptime on every heartbeat
type UptimeRecorder interface {
	SetUptime(uptime time.Duration)
}

// Status is a point-in-time view of the monitor
type Status struct {
	State     State
	StartedAt time.Time
	Uptime    time.Duration
	Timestamp time.Time
}

// Healthy reports whether the service accepts traffic
func (s Status) Healthy() bool {
	return s.State == StateServing
}

// Monitor tracks service lifecycle and emits a periodic heartbeat
type Monitor struct {
	interval time.Duration
	uptime   UptimeRecorder
	logger   *zap.Logger
	now      func() time.Time

	mu        sync.RWMutex
	state     State
	startedAt time.Time
	listeners []Listener
	running   bool
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewMonitor creates a new health monitor in the starting state.
// uptime may be nil.
func NewMonitor(interval time.Duration, uptime UptimeRecorder, logger *zap.Logger) *Monitor {
	return &Monitor{
		interval:  interval,
		uptime:    uptime,
		logger:    logger,
		now:       time.Now,
		state:     StateStarting,
		startedAt: time.Now(),
	}
}

// AddListener registers l and immediately notifies it of the current state
func (m *Monitor) AddListener(l Listener) {
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	state := m.state
	m.mu.Unlock()

	l.OnStateChange(state)
}

// MarkServing moves the monitor to serving. Ignored once draining.
func (m *Monitor) MarkServing() {
	m.transition(StateServing)
}

// MarkDraining moves the monitor to draining
func (m *Monitor) MarkDraining() {
	m.transition(StateDraining)
}

func (m *Monitor) transition(to State) {
	m.mu.Lock()
	from := m.state
	if from == to || from == StateDraining {
		m.mu.Unlock()
		return
	}
	m.state = to
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	m.logger.Info("service state changed",
		zap.String("from", string(from)),
		zap.String("to", string(to)))

	for _, l := range listeners {
		l.OnStateChange(to)
	}
}

// Start starts the heartbeat loop
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	stopCh, doneCh := make(chan struct{}), make(chan struct{})
	m.stopCh, m.doneCh = stopCh, doneCh
	m.mu.Unlock()

	go m.run(stopCh, doneCh)
}

// Stop stops the heartbeat loop and waits for it to exit
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	stopCh, doneCh := m.stopCh, m.doneCh
	m.mu.Unlock()

	close(stopCh)
	<-doneCh
}

// run is the main heartbeat loop
func (m *Monitor) run(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	m.heartbeat()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			m.heartbeat()
		}
	}
}

// heartbeat logs status and records uptime
func (m *Monitor) heartbeat() {
	status := m.GetStatus()

	m.logger.Debug("health heartbeat",
		zap.String("state", string(status.State)),
		zap.Duration("uptime", status.Uptime))

	if m.uptime != nil {
		m.uptime.SetUptime(status.Uptime)
	}

	if !status.Healthy() {
		m.logger.Warn("service is not serving",
			zap.String("state", string(status.State)))
	}
}

// GetStatus returns the current health status
func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	return Status{
		State:     m.state,
		StartedAt: m.startedAt,
		Uptime:    now.Sub(m.startedAt),
		Timestamp: now,
	}
}

// IsHealthy returns true if the service is serving
func (m *Monitor) IsHealthy() bool {
	return m.GetStatus().Healthy()
}
