package cli

import (
	"fmt"
	"time"

	"chartline-trader/internal/models"
)

// FormatDateTime formats a run timestamp in local time.
func FormatDateTime(t time.Time) string {
	return t.Local().Format("02-Jan-2006 15:04:05")
}

// FormatDuration formats a duration in human-readable form.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	} else if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
}

// FormatBox formats an order-parent box as left,top -> right,bottom.
func FormatBox(b *models.Box) string {
	if b == nil {
		return "-"
	}
	return fmt.Sprintf("%d,%d -> %d,%d", b.Left, b.Top, b.Right, b.Bottom)
}

// FormatTrendline formats a trendline as its two arrow labels.
func FormatTrendline(c models.ContractView) string {
	prefix := c.Type.ExtremumKind().Prefix()
	return fmt.Sprintf("%s%d->%s%d", prefix, c.Sender.ArrowNumber, prefix, c.Receiver.ArrowNumber)
}

// FormatBool renders yes/no.
func FormatBool(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// ShortID shortens a run ID for tables.
func ShortID(id string) string {
	return TruncateString(id, 8)
}

// TruncateString truncates a string to max length with ellipsis.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
