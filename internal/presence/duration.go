package presence

import (
	"fmt"
	"time"
)

// FormatDuration renders d as hours, minutes and seconds, e.g. "3小时2分钟30秒".
// Leading zero units are omitted and sub-second precision is truncated.
func FormatDuration(d time.Duration) string {
	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%d小时%d分钟%d秒", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%d分钟%d秒", minutes, seconds)
	default:
		return fmt.Sprintf("%d秒", seconds)
	}
}

// StateLabel returns the display label for a confirmed state.
func StateLabel(online bool) string {
	if online {
		return "在线"
	}
	return "离线"
}
