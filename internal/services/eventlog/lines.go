package eventlog

import (
	"fmt"

	"github.com/fgeck/gonetmon-homelab/internal/models"
	"github.com/fgeck/gonetmon-homelab/internal/presence"
)

// IntervalLayout is the timestamp layout used inside interval lines.
const IntervalLayout = "20060102_150405"

// StartLine announces that monitoring of target began.
func StartLine(target models.Target) string {
	return fmt.Sprintf("开始监控目标: %s (%s)", target.Identity(), target.Kind())
}

// InitialLine reports the seeded state.
func InitialLine(online bool) string {
	return "初始状态: " + presence.StateLabel(online)
}

// IntervalLine describes the time spent in the previous confirmed state.
func IntervalLine(t presence.Transition) string {
	return fmt.Sprintf("%s->%s [%s%s]",
		t.StartedAt.Format(IntervalLayout),
		t.EndedAt.Format(IntervalLayout),
		presence.StateLabel(t.Previous),
		presence.FormatDuration(t.Duration),
	)
}

// StateChangeLine follows an interval line for a committed transition.
func StateChangeLine(online bool) string {
	return "状态变更: " + presence.StateLabel(online)
}

// HeartbeatLine reports liveness of a monitoring loop. Console only.
func HeartbeatLine(h presence.Heartbeat) string {
	return fmt.Sprintf("[心跳] 当前状态: %s | 持续时间: %s | 运行时间: %s",
		presence.StateLabel(h.Online),
		presence.FormatDuration(h.StateDuration),
		presence.FormatDuration(h.RunDuration),
	)
}

// StoppedLine precedes the closing interval on shutdown.
func StoppedLine() string {
	return "监控已停止"
}

// DisabledLine reports a target skipped because it is not enabled.
func DisabledLine(target models.Target) string {
	return fmt.Sprintf("目标 %s 未启用，跳过监控", target.Identity())
}

// NoTargetsLine is written when the configuration has no targets.
func NoTargetsLine() string {
	return "没有配置监控目标"
}
