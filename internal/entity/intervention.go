package entity

import "time"

// Tier is one escalation level of the intervention ladder. A session whose
// elapsed time passes MinElapsed is eligible for this tier; RepeatInterval is
// the minimum spacing between interventions while the tier holds.
type Tier struct {
	Name           string        `json:"name"`
	MinElapsed     time.Duration `json:"minElapsed"`
	RepeatInterval time.Duration `json:"repeatInterval"`
}

// TierTable is ordered ascending by MinElapsed. Evaluation scans from the
// highest tier down so blowing past a low tier lands on the stricter interval.
type TierTable []Tier

// DefaultTierTable mirrors the extension defaults: gentle nudges after half an
// hour, escalating spacing as the session drags on.
func DefaultTierTable() TierTable {
	return TierTable{
		{Name: "gentle", MinElapsed: 30 * time.Minute, RepeatInterval: 15 * time.Minute},
		{Name: "firm", MinElapsed: 60 * time.Minute, RepeatInterval: 10 * time.Minute},
		{Name: "strict", MinElapsed: 120 * time.Minute, RepeatInterval: 5 * time.Minute},
	}
}

// InterventionState is the process-wide dispatch bookkeeping, persisted for
// durability across restarts.
type InterventionState struct {
	LastInterventionTime   time.Time `json:"lastInterventionTime"`
	LastInterventionDomain string    `json:"lastInterventionDomain"`
	SnoozeUntil            time.Time `json:"snoozeUntil"`
}

// InterventionDecision is the at-most-one popup decision a tick can produce.
type InterventionDecision struct {
	Domain    string        `json:"domain"`
	TabID     int           `json:"tabId"`
	Tier      Tier          `json:"tier"`
	ElapsedMs int64         `json:"elapsedMs"`
	Interval  time.Duration `json:"interval"`
}
