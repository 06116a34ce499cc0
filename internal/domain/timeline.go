package domain

import "time"

// StatusChange is one immutable audit record of a stage transition.
// A nil FromStage denotes ticket creation.
type StatusChange struct {
	ID        string
	FromStage *Stage
	ToStage   Stage
	Actor     string
	Note      string
	System    bool
	CreatedAt time.Time
}

// Timeline is the per-ticket audit aggregate: the entry timestamp of the
// most recent visit to each stage, the cumulative days spent per stage,
// and the ordered append-only status-change log.
type Timeline struct {
	TicketID       string
	StateHistory   map[Stage]time.Time
	StateDurations map[Stage]float64
	Log            []StatusChange
}

// NewTimeline starts a timeline for a ticket created in the given stage.
func NewTimeline(ticketID string, initial Stage, at time.Time) *Timeline {
	return &Timeline{
		TicketID:       ticketID,
		StateHistory:   map[Stage]time.Time{initial: at},
		StateDurations: map[Stage]float64{},
	}
}

// EntryTime returns when the ticket most recently entered the stage.
func (t *Timeline) EntryTime(stage Stage) (time.Time, bool) {
	if t == nil || t.StateHistory == nil {
		return time.Time{}, false
	}
	entered, ok := t.StateHistory[stage]
	return entered, ok
}

// RecordTransition closes the visit to the vacated stage and opens the
// visit to the entered stage. It returns the days added to the vacated
// stage's cumulative duration. Durations accumulate across repeated
// visits to the same stage; an entry timestamp is never overwritten
// with an earlier instant for the same visit.
func (t *Timeline) RecordTransition(from, to Stage, at time.Time) float64 {
	if t.StateHistory == nil {
		t.StateHistory = map[Stage]time.Time{}
	}
	if t.StateDurations == nil {
		t.StateDurations = map[Stage]float64{}
	}

	var added float64
	if entered, ok := t.StateHistory[from]; ok && at.After(entered) {
		added = DaysBetween(entered, at)
		t.StateDurations[from] += added
	}
	if existing, ok := t.StateHistory[to]; !ok || at.After(existing) {
		t.StateHistory[to] = at
	}
	return added
}

// Append adds a status change to the log.
func (t *Timeline) Append(change StatusChange) {
	t.Log = append(t.Log, change)
}

// DaysBetween converts the interval between two instants to fractional
// days.
func DaysBetween(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24
}

// StageVisit is one closed or open stay in a stage. An open visit has a
// zero ExitedAt.
type StageVisit struct {
	Stage     Stage
	EnteredAt time.Time
	ExitedAt  time.Time
}

// VisitsFromLog reconstructs stage visits from an ordered status-change
// log. The final visit is left open.
func VisitsFromLog(log []StatusChange) []StageVisit {
	visits := make([]StageVisit, 0, len(log))
	for i, change := range log {
		if i > 0 {
			visits[len(visits)-1].ExitedAt = change.CreatedAt
		}
		visits = append(visits, StageVisit{Stage: change.ToStage, EnteredAt: change.CreatedAt})
	}
	return visits
}

// DurationsFromLog folds per-stage cumulative days over all visits,
// counting the still-open visit up to now. The sum over all stages
// equals the wall-clock time since the first log entry.
func DurationsFromLog(log []StatusChange, now time.Time) map[Stage]float64 {
	durations := make(map[Stage]float64)
	for _, visit := range VisitsFromLog(log) {
		exited := visit.ExitedAt
		if exited.IsZero() {
			exited = now
		}
		if exited.After(visit.EnteredAt) {
			durations[visit.Stage] += DaysBetween(visit.EnteredAt, exited)
		}
	}
	return durations
}
