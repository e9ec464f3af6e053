// Package sla computes deadlines and breach state for priority-bearing cases.
// Everything here is a pure function of (priority, createdAt, now): nothing is
// stored, so a read can never disagree with the wall clock.
package sla

import (
	"time"

	"sahaya/pkg/domain"
)

// State is the coarse position of a case relative to its deadline.
type State string

const (
	StateOnTime     State = "on_time"
	StateNearBreach State = "near_breach"
	StateBreached   State = "breached"
)

// nearBreachWindow is how close to the deadline a case is flagged as at risk.
const nearBreachWindow = 24 * time.Hour

// slaHours fixes the allowance per priority.
var slaHours = map[domain.Priority]time.Duration{
	domain.PriorityP1: 48 * time.Hour,
	domain.PriorityP2: 120 * time.Hour,
	domain.PriorityP3: 240 * time.Hour,
	domain.PriorityP4: 480 * time.Hour,
}

// DefaultPriority applies when an SLA-bearing case was filed without one.
const DefaultPriority = domain.PriorityP3

// Allowance returns the total time budget for the priority, defaulting to P3
// for absent or unknown priorities.
func Allowance(priority domain.Priority) time.Duration {
	if d, ok := slaHours[priority]; ok {
		return d
	}
	return slaHours[DefaultPriority]
}

// DueAt derives the deadline from the case's creation time and priority.
func DueAt(priority domain.Priority, createdAt time.Time) time.Time {
	return createdAt.Add(Allowance(priority))
}

// Remaining is the signed time left until the deadline; negative means
// overdue by that much.
func Remaining(now, dueAt time.Time) time.Duration {
	return dueAt.Sub(now)
}

// StateAt classifies now against the deadline: breached strictly after dueAt,
// nearBreach within the 24h window up to and including dueAt, onTime before.
func StateAt(now, dueAt time.Time) State {
	if now.After(dueAt) {
		return StateBreached
	}
	if dueAt.Sub(now) <= nearBreachWindow {
		return StateNearBreach
	}
	return StateOnTime
}

// Snapshot is the full derived SLA view handed to read-side callers.
type Snapshot struct {
	Priority  domain.Priority `json:"priority"`
	DueAt     time.Time       `json:"due_at"`
	Remaining time.Duration   `json:"remaining"`
	State     State           `json:"state"`
}

// Evaluate computes the whole snapshot in one pass. Callers that must freeze
// the clock for closed cases clamp now before calling.
func Evaluate(priority domain.Priority, createdAt, now time.Time) Snapshot {
	due := DueAt(priority, createdAt)
	return Snapshot{
		Priority:  priority,
		DueAt:     due,
		Remaining: Remaining(now, due),
		State:     StateAt(now, due),
	}
}
