package domain

import "time"

// SLAState classifies how much headroom is left before a deadline.
type SLAState string

const (
	SLAStateNone        SLAState = "none"
	SLAStateOverdue     SLAState = "overdue"
	SLAStateCritical    SLAState = "critical"
	SLAStateApproaching SLAState = "approaching"
	SLAStateOnTrack     SLAState = "on_track"
)

const (
	slaCriticalWindow    = 4 * time.Hour
	slaApproachingWindow = 8 * time.Hour
)

// SLADurations maps a priority to the response window granted at creation.
type SLADurations map[TicketPriority]time.Duration

// DefaultSLADurations returns the stock deadline table, overridable via
// the sla/deadlines system setting.
func DefaultSLADurations() SLADurations {
	return SLADurations{
		TicketPriorityUrgent: 4 * time.Hour,
		TicketPriorityHigh:   8 * time.Hour,
		TicketPriorityMedium: 24 * time.Hour,
		TicketPriorityLow:    48 * time.Hour,
	}
}

// ComputeSLADeadline derives the deadline stamped on a ticket at creation.
// It is invoked exactly once per ticket; later priority edits do not
// recompute the deadline.
func ComputeSLADeadline(priority TicketPriority, createdAt time.Time, durations SLADurations) time.Time {
	d, ok := durations[priority]
	if !ok {
		d = DefaultSLADurations()[TicketPriorityMedium]
	}
	return createdAt.Add(d)
}

// ClassifySLA buckets the remaining time before deadline. Boundaries are
// half-open: exactly 4h or 8h remaining lands in the better bucket.
func ClassifySLA(deadline *time.Time, now time.Time) SLAState {
	if deadline == nil {
		return SLAStateNone
	}
	remaining := deadline.Sub(now)
	switch {
	case remaining < 0:
		return SLAStateOverdue
	case remaining < slaCriticalWindow:
		return SLAStateCritical
	case remaining < slaApproachingWindow:
		return SLAStateApproaching
	default:
		return SLAStateOnTrack
	}
}
