package entity

import (
	"fmt"
	"time"
)

// GoalType is the closed set of goal kinds.
type GoalType string

const (
	GoalDailyLimit  GoalType = "daily_limit"
	GoalSiteLimit   GoalType = "site_limit"
	GoalWeeklyLimit GoalType = "weekly_limit"
)

func (t GoalType) Valid() bool {
	switch t {
	case GoalDailyLimit, GoalSiteLimit, GoalWeeklyLimit:
		return true
	}
	return false
}

// Goal is a user-defined time budget with percentage notification thresholds.
type Goal struct {
	ID            string   `json:"id"`
	Type          GoalType `json:"type"`
	TargetMinutes int      `json:"target"`
	Domain        string   `json:"domain,omitempty"`
	NotifyAt      []int    `json:"notifyAt"`
	Enabled       bool     `json:"enabled"`
}

func (g Goal) TargetMs() int64 {
	return int64(g.TargetMinutes) * 60_000
}

// GoalProgress is the computed state of one goal. Percentage is the true
// unclamped ratio; clamping to 100 for display is a presentation concern.
type GoalProgress struct {
	GoalID     string   `json:"goalId"`
	Type       GoalType `json:"type"`
	Domain     string   `json:"domain,omitempty"`
	CurrentMs  int64    `json:"currentMs"`
	TargetMs   int64    `json:"targetMs"`
	Percentage float64  `json:"percentage"`
	Exceeded   bool     `json:"exceeded"`
}

// GoalNotification is raised at most once per goal/threshold/day.
type GoalNotification struct {
	GoalID     string   `json:"goalId"`
	Type       GoalType `json:"type"`
	Domain     string   `json:"domain,omitempty"`
	Threshold  int      `json:"threshold"`
	Percentage float64  `json:"percentage"`
	Day        string   `json:"day"`
}

// HistoryKey identifies one delivered goal notification within a calendar day.
func (n GoalNotification) HistoryKey() string {
	return GoalHistoryKey(n.GoalID, n.Threshold, n.Day)
}

func GoalHistoryKey(goalID string, threshold int, day string) string {
	return fmt.Sprintf("%s|%d|%s", goalID, threshold, day)
}

// GoalConfig is the persisted goals record: the goal list plus the bounded
// notification history, evicted oldest-first past the size cap.
type GoalConfig struct {
	Goals   []Goal   `json:"goals"`
	History []string `json:"history"`
}

// WeeklyWindowDays is the trailing window (inclusive) for weekly_limit goals.
const WeeklyWindowDays = 7

// WeeklyWindowStart returns the first day key of the trailing weekly window
// ending at t.
func WeeklyWindowStart(t time.Time) string {
	return DayKey(t.AddDate(0, 0, -(WeeklyWindowDays - 1)))
}
