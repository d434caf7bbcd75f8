// Package presence implements the debounced online/offline state machine for
// a single monitored target.
//
// A Machine turns raw reachability samples into confirmed transitions. A raw
// sample that disagrees with the confirmed state starts a pending timer; the
// transition is committed only once the disagreement has persisted for the
// configured threshold. Any agreeing sample resets the pending timer.
//
// The Machine never reads the wall clock. Every timestamp is passed in by the
// caller, so a Machine is deterministic and owned by exactly one goroutine.
package presence

import "time"

// Settings are the per-target thresholds used by a Machine.
type Settings struct {
	OnlineThreshold   time.Duration
	OfflineThreshold  time.Duration
	HeartbeatInterval time.Duration
}

// Initial is emitted once, for the first sample a Machine observes.
type Initial struct {
	Online bool
	At     time.Time
}

// Transition describes the interval spent in the previous confirmed state.
type Transition struct {
	Previous  bool
	Current   bool
	StartedAt time.Time
	EndedAt   time.Time
	Duration  time.Duration
	// Final marks the synthetic interval written when monitoring stops.
	Final bool
}

// Heartbeat reports the current confirmed state and how long it has lasted.
type Heartbeat struct {
	Online        bool
	At            time.Time
	StateDuration time.Duration
	RunDuration   time.Duration
}

// Outcome is the result of a single Observe call. Any field may be nil.
type Outcome struct {
	Initial    *Initial
	Transition *Transition
	Heartbeat  *Heartbeat
}

// Machine holds the presence state of one target.
type Machine struct {
	settings Settings

	seeded              bool
	online              bool
	lastChange          time.Time
	pendingOnlineSince  time.Time
	pendingOfflineSince time.Time
	startedAt           time.Time
	lastHeartbeat       time.Time
}

// New creates a Machine for a target whose monitoring started at startedAt.
func New(settings Settings, startedAt time.Time) *Machine {
	return &Machine{
		settings:      settings,
		startedAt:     startedAt,
		lastHeartbeat: startedAt,
	}
}

// Observe feeds one raw sample taken at now into the Machine.
func (m *Machine) Observe(reachable bool, now time.Time) Outcome {
	var out Outcome

	if !m.seeded {
		m.seeded = true
		m.online = reachable
		m.lastChange = now
		out.Initial = &Initial{Online: reachable, At: now}
	} else {
		out.Transition = m.debounce(reachable, now)
	}

	out.Heartbeat = m.heartbeat(now)
	return out
}

func (m *Machine) debounce(reachable bool, now time.Time) *Transition {
	if reachable == m.online {
		m.clearPending()
		return nil
	}

	pending, threshold := &m.pendingOfflineSince, m.settings.OfflineThreshold
	if reachable {
		pending, threshold = &m.pendingOnlineSince, m.settings.OnlineThreshold
	}

	if pending.IsZero() {
		*pending = now
	}
	if now.Sub(*pending) < threshold {
		return nil
	}

	t := &Transition{
		Previous:  m.online,
		Current:   reachable,
		StartedAt: m.lastChange,
		EndedAt:   now,
		Duration:  elapsed(m.lastChange, now),
	}

	m.online = reachable
	m.lastChange = now
	m.clearPending()

	return t
}

func (m *Machine) heartbeat(now time.Time) *Heartbeat {
	if now.Sub(m.lastHeartbeat) < m.settings.HeartbeatInterval {
		return nil
	}
	m.lastHeartbeat = now

	return &Heartbeat{
		Online:        m.online,
		At:            now,
		StateDuration: elapsed(m.lastChange, now),
		RunDuration:   now.Sub(m.startedAt),
	}
}

// Close returns the closing interval for the current confirmed state, ending
// at now. It returns nil if the Machine has never observed a sample.
func (m *Machine) Close(now time.Time) *Transition {
	if !m.seeded {
		return nil
	}

	return &Transition{
		Previous:  m.online,
		Current:   m.online,
		StartedAt: m.lastChange,
		EndedAt:   now,
		Duration:  elapsed(m.lastChange, now),
		Final:     true,
	}
}

// Online reports the last confirmed state.
func (m *Machine) Online() bool {
	return m.online
}

// Seeded reports whether the initial sample has been observed.
func (m *Machine) Seeded() bool {
	return m.seeded
}

// LastChange returns when the confirmed state last flipped (or was seeded).
func (m *Machine) LastChange() time.Time {
	return m.lastChange
}

func (m *Machine) clearPending() {
	m.pendingOnlineSince = time.Time{}
	m.pendingOfflineSince = time.Time{}
}

func elapsed(from, to time.Time) time.Duration {
	if from.IsZero() {
		return 0
	}
	return to.Sub(from)
}
