package entity

import "time"

// RuleAction is the closed set of schedule rule behaviors.
type RuleAction string

const (
	ActionSuppress        RuleAction = "suppress"
	ActionAdjustThreshold RuleAction = "adjust_threshold"
	ActionBlockTracking   RuleAction = "block_tracking"
)

func (a RuleAction) Valid() bool {
	switch a {
	case ActionSuppress, ActionAdjustThreshold, ActionBlockTracking:
		return true
	}
	return false
}

// ScheduleRule is a user-defined time window rule. StartTime/EndTime are
// "HH:MM" clock strings; StartTime > EndTime means an overnight window.
// A rule with malformed times is treated as inactive, never as an error.
type ScheduleRule struct {
	ID                  string     `json:"id"`
	Enabled             bool       `json:"enabled"`
	StartTime           string     `json:"startTime"`
	EndTime             string     `json:"endTime"`
	Days                []int      `json:"days"` // 0=Sunday .. 6=Saturday
	Action              RuleAction `json:"action"`
	ThresholdMultiplier float64    `json:"thresholdMultiplier,omitempty"`
}

// QuickSettings are the one-toggle schedule presets exposed by the popup.
type QuickSettings struct {
	QuietHoursEnabled bool   `json:"quietHoursEnabled"`
	QuietHoursStart   string `json:"quietHoursStart"`
	QuietHoursEnd     string `json:"quietHoursEnd"`

	WorkHoursEnabled bool   `json:"workHoursEnabled"`
	WorkHoursStart   string `json:"workHoursStart"`
	WorkHoursEnd     string `json:"workHoursEnd"`
	WorkDays         []int  `json:"workDays"`

	WeekendModeEnabled    bool    `json:"weekendModeEnabled"`
	WeekendModeMultiplier float64 `json:"weekendModeMultiplier"`
}

// ScheduleConfig is persisted as one record; quickSettings and rules are
// separate fields so collaborators updating one never clobber the other.
type ScheduleConfig struct {
	QuickSettings QuickSettings  `json:"quickSettings"`
	Rules         []ScheduleRule `json:"rules"`
}

// DefaultQuickSettings mirrors the extension's factory defaults.
func DefaultQuickSettings() QuickSettings {
	return QuickSettings{
		QuietHoursStart:       "22:00",
		QuietHoursEnd:         "08:00",
		WorkHoursStart:        "09:00",
		WorkHoursEnd:          "17:00",
		WorkDays:              []int{1, 2, 3, 4, 5},
		WeekendModeMultiplier: 1.5,
	}
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
