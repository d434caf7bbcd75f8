package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

func testSettings() Settings {
	return Settings{
		OnlineThreshold:   5 * time.Second,
		OfflineThreshold:  5 * time.Second,
		HeartbeatInterval: time.Hour,
	}
}

func at(seconds int) time.Time {
	return t0.Add(time.Duration(seconds) * time.Second)
}

// feed observes one sample per second starting at startSec and returns every transition.
func feed(m *Machine, startSec int, samples ...bool) []Transition {
	var transitions []Transition
	for i, s := range samples {
		out := m.Observe(s, at(startSec+i))
		if out.Transition != nil {
			transitions = append(transitions, *out.Transition)
		}
	}
	return transitions
}

func repeat(v bool, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestObserve_FirstSampleSeedsState(t *testing.T) {
	for _, reachable := range []bool{true, false} {
		m := New(testSettings(), t0)

		out := m.Observe(reachable, t0)

		require.NotNil(t, out.Initial)
		assert.Equal(t, reachable, out.Initial.Online)
		assert.Equal(t, t0, out.Initial.At)
		assert.Nil(t, out.Transition)
		assert.Nil(t, out.Heartbeat)
		assert.True(t, m.Seeded())
		assert.Equal(t, reachable, m.Online())
		assert.Equal(t, t0, m.LastChange())
	}
}

func TestObserve_InitialOnlyOnce(t *testing.T) {
	m := New(testSettings(), t0)
	m.Observe(true, at(0))

	out := m.Observe(true, at(1))

	assert.Nil(t, out.Initial)
	assert.Nil(t, out.Transition)
}

func TestObserve_TransitionFiresWhenThresholdReached(t *testing.T) {
	m := New(testSettings(), t0)
	m.Observe(true, at(0))

	// Pending timer starts at 1s, threshold 5s: nothing before 6s.
	for sec := 1; sec <= 5; sec++ {
		out := m.Observe(false, at(sec))
		require.Nil(t, out.Transition, "transition at %ds", sec)
	}

	out := m.Observe(false, at(6))

	require.NotNil(t, out.Transition)
	tr := out.Transition
	assert.True(t, tr.Previous)
	assert.False(t, tr.Current)
	assert.Equal(t, at(0), tr.StartedAt)
	assert.Equal(t, at(6), tr.EndedAt)
	assert.Equal(t, 6*time.Second, tr.Duration)
	assert.False(t, tr.Final)
	assert.False(t, m.Online())
	assert.Equal(t, at(6), m.LastChange())
	assert.True(t, m.pendingOfflineSince.IsZero())
	assert.True(t, m.pendingOnlineSince.IsZero())
}

func TestObserve_FiresOnFirstTickCrossingThreshold(t *testing.T) {
	tests := []struct {
		name      string
		threshold time.Duration
		step      time.Duration
		ticks     int // disagreeing ticks, including the one that starts the timer
		wantAt    int // tick index (1-based) that should commit, 0 for none
	}{
		{"exact multiple", 10 * time.Second, 2 * time.Second, 8, 6},
		{"crosses between ticks", 5 * time.Second, 2 * time.Second, 6, 4},
		{"span too short", 10 * time.Second, 2 * time.Second, 5, 0},
		{"one second step", 3 * time.Second, time.Second, 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(Settings{OfflineThreshold: tt.threshold, OnlineThreshold: tt.threshold, HeartbeatInterval: time.Hour}, t0)
			m.Observe(true, t0)

			fired := 0
			for i := 1; i <= tt.ticks; i++ {
				out := m.Observe(false, t0.Add(time.Duration(i)*tt.step))
				if out.Transition != nil {
					require.Zero(t, fired, "second transition at tick %d", i)
					fired = i
				}
			}

			assert.Equal(t, tt.wantAt, fired)
		})
	}
}

func TestObserve_FlapResetsPendingTimer(t *testing.T) {
	m := New(testSettings(), t0)
	m.Observe(true, at(0))

	m.Observe(false, at(1))
	assert.Equal(t, at(1), m.pendingOfflineSince)

	m.Observe(true, at(2))
	assert.True(t, m.pendingOfflineSince.IsZero())

	// The next flap restarts from zero: 4s of cumulative offline time across two
	// flaps must not add up to the 5s threshold.
	transitions := feed(m, 3, false, false, false, false, false)
	assert.Empty(t, transitions)
	assert.Equal(t, at(3), m.pendingOfflineSince)
	assert.True(t, m.Online())
}

func TestObserve_OnlineDirectionUsesOnlineThreshold(t *testing.T) {
	m := New(Settings{OnlineThreshold: 2 * time.Second, OfflineThreshold: 30 * time.Second, HeartbeatInterval: time.Hour}, t0)
	m.Observe(false, at(0))

	transitions := feed(m, 10, true, true, true)

	require.Len(t, transitions, 1)
	assert.False(t, transitions[0].Previous)
	assert.True(t, transitions[0].Current)
	assert.Equal(t, at(12), transitions[0].EndedAt)
	assert.Equal(t, 12*time.Second, transitions[0].Duration)
}

func TestObserve_ZeroThresholdCommitsOnFirstDisagreement(t *testing.T) {
	m := New(Settings{HeartbeatInterval: time.Hour}, t0)
	m.Observe(true, at(0))

	out := m.Observe(false, at(1))

	require.NotNil(t, out.Transition)
	assert.Equal(t, time.Second, out.Transition.Duration)
	assert.False(t, m.Online())
}

func TestObserve_DurationMeasuredFromLastTransition(t *testing.T) {
	m := New(testSettings(), t0)
	m.Observe(true, at(0))

	first := feed(m, 1, repeat(false, 6)...)
	require.Len(t, first, 1)
	assert.Equal(t, at(6), first[0].EndedAt)

	second := feed(m, 100, repeat(true, 6)...)
	require.Len(t, second, 1)
	assert.Equal(t, at(6), second[0].StartedAt)
	assert.Equal(t, at(105), second[0].EndedAt)
	assert.Equal(t, 99*time.Second, second[0].Duration)
	assert.True(t, second[0].Current)
}

func TestObserve_AtMostOnePendingTimer(t *testing.T) {
	m := New(testSettings(), t0)
	m.Observe(true, at(0))

	samples := []bool{false, true, false, false, true, false, false, false, false, false, false, true, true}
	for i, s := range samples {
		m.Observe(s, at(i+1))

		assert.False(t, !m.pendingOnlineSince.IsZero() && !m.pendingOfflineSince.IsZero(), "both timers set at %d", i)
		if m.Online() {
			assert.True(t, m.pendingOnlineSince.IsZero(), "pending online while online at %d", i)
		} else {
			assert.True(t, m.pendingOfflineSince.IsZero(), "pending offline while offline at %d", i)
		}
	}
}

func TestObserve_Heartbeat(t *testing.T) {
	m := New(Settings{OnlineThreshold: time.Second, OfflineThreshold: time.Second, HeartbeatInterval: 10 * time.Second}, t0)
	m.Observe(true, at(0))

	var beats []Heartbeat
	for sec := 1; sec <= 35; sec++ {
		if out := m.Observe(true, at(sec)); out.Heartbeat != nil {
			beats = append(beats, *out.Heartbeat)
		}
	}

	require.Len(t, beats, 3)
	assert.Equal(t, at(10), beats[0].At)
	assert.Equal(t, at(20), beats[1].At)
	assert.Equal(t, at(30), beats[2].At)
	assert.True(t, beats[2].Online)
	assert.Equal(t, 30*time.Second, beats[2].StateDuration)
	assert.Equal(t, 30*time.Second, beats[2].RunDuration)
}

func TestObserve_HeartbeatIndependentOfTransitions(t *testing.T) {
	m := New(Settings{OnlineThreshold: 0, OfflineThreshold: 0, HeartbeatInterval: 4 * time.Second}, t0)
	m.Observe(true, at(0))

	var beats, transitions int
	for sec := 1; sec <= 8; sec++ {
		out := m.Observe(sec%2 == 0, at(sec))
		if out.Heartbeat != nil {
			beats++
			assert.Equal(t, time.Duration(0), out.Heartbeat.StateDuration, "heartbeat at %ds", sec)
		}
		if out.Transition != nil {
			transitions++
		}
	}

	assert.Equal(t, 2, beats)
	assert.Equal(t, 8, transitions)
}

func TestObserve_HeartbeatRunDurationUsesStartedAt(t *testing.T) {
	m := New(Settings{HeartbeatInterval: 5 * time.Second}, t0)
	m.Observe(false, at(3))

	out := m.Observe(false, at(5))

	require.NotNil(t, out.Heartbeat)
	assert.Equal(t, 2*time.Second, out.Heartbeat.StateDuration)
	assert.Equal(t, 5*time.Second, out.Heartbeat.RunDuration)
	assert.False(t, out.Heartbeat.Online)
}

func TestClose(t *testing.T) {
	m := New(testSettings(), t0)
	assert.Nil(t, m.Close(at(1)))

	m.Observe(false, at(0))
	feed(m, 1, true, true)

	tr := m.Close(at(90))

	require.NotNil(t, tr)
	assert.True(t, tr.Final)
	assert.False(t, tr.Previous)
	assert.False(t, tr.Current)
	assert.Equal(t, at(0), tr.StartedAt)
	assert.Equal(t, at(90), tr.EndedAt)
	assert.Equal(t, 90*time.Second, tr.Duration)
}

func TestEndToEnd_ShortOutageIgnored(t *testing.T) {
	const threshold = 10
	m := New(Settings{OnlineThreshold: threshold * time.Second, OfflineThreshold: threshold * time.Second, HeartbeatInterval: time.Hour}, t0)
	m.Observe(true, at(0))

	samples := append(repeat(false, threshold-1), repeat(true, 3)...)
	assert.Empty(t, feed(m, 1, samples...))
	assert.True(t, m.Online())
}

func TestEndToEnd_LongOutageReported(t *testing.T) {
	const threshold = 10
	m := New(Settings{OnlineThreshold: threshold * time.Second, OfflineThreshold: threshold * time.Second, HeartbeatInterval: time.Hour}, t0)
	m.Observe(true, at(0))

	transitions := feed(m, 1, repeat(false, threshold+1)...)

	require.Len(t, transitions, 1)
	assert.False(t, transitions[0].Current)
	assert.Equal(t, at(0), transitions[0].StartedAt)
	assert.Equal(t, time.Duration(threshold+1)*time.Second, transitions[0].Duration)
}
