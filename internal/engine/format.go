package engine

import (
	"fmt"
	"time"
)

// Presentation helpers consumed by rendering surfaces. All pure and
// side-effect free; none of them mutate their inputs.

// RelativeTime renders how long ago t was relative to now, truncated toward
// zero at each unit boundary.
func RelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
}

// PriorityColor maps a priority to its display color.
func PriorityColor(p Priority) string {
	switch p {
	case PriorityHigh:
		return "red"
	case PriorityMedium:
		return "orange"
	default:
		return "gray"
	}
}

// PriorityIcon maps a priority to its display icon.
func PriorityIcon(p Priority) string {
	switch p {
	case PriorityHigh:
		return "🔴"
	case PriorityMedium:
		return "🟡"
	default:
		return "⚪"
	}
}

// TypeIcon maps an alert type to its display icon.
func TypeIcon(t AlertType) string {
	switch t {
	case TypeValueBet:
		return "💰"
	case TypeHighConfidence:
		return "🎯"
	case TypeLineMovement:
		return "📈"
	case TypeInjury:
		return "🏥"
	default:
		return "📊"
	}
}

// GroupByType partitions alerts into a map keyed by type, preserving the
// relative order of alerts within each group.
func GroupByType(alerts []Alert) map[AlertType][]Alert {
	groups := make(map[AlertType][]Alert)
	for _, a := range alerts {
		groups[a.Type] = append(groups[a.Type], a)
	}
	return groups
}

// FilterBySport returns the alerts matching sport. The value "all" is a
// pass-through returning the input unchanged.
func FilterBySport(alerts []Alert, sport string) []Alert {
	if sport == "all" {
		return alerts
	}
	var filtered []Alert
	for _, a := range alerts {
		if string(a.Sport) == sport {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

// UnreadCount counts alerts not yet marked read.
func UnreadCount(alerts []Alert) int {
	n := 0
	for _, a := range alerts {
		if !a.Read {
			n++
		}
	}
	return n
}
