package entity

import "time"

// DayKeyLayout is the calendar-day key format used throughout the ledger.
const DayKeyLayout = "2006-01-02"

// DomainTimes maps a domain to accumulated active milliseconds.
type DomainTimes map[string]int64

// TimeLedger maps a calendar-day key to per-domain accumulated time.
// Values only grow within a day while a session is active; days older than
// the retention window are pruned during maintenance.
type TimeLedger map[string]DomainTimes

func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// TrailingDayKeys returns the keys for the trailing n calendar days ending at
// (and including) t, oldest first.
func TrailingDayKeys(t time.Time, n int) []string {
	keys := make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		keys = append(keys, DayKey(t.AddDate(0, 0, -i)))
	}
	return keys
}

// Add accumulates ms for domain under the given day key, creating entries lazily.
func (l TimeLedger) Add(day, domain string, ms int64) {
	if ms <= 0 {
		return
	}
	times, ok := l[day]
	if !ok {
		times = DomainTimes{}
		l[day] = times
	}
	times[domain] += ms
}

// Get returns the accumulated time for domain on day, zero if absent.
func (l TimeLedger) Get(day, domain string) int64 {
	return l[day][domain]
}

// DayTotal sums all domains for one day.
func (l TimeLedger) DayTotal(day string) int64 {
	var total int64
	for _, ms := range l[day] {
		total += ms
	}
	return total
}

// Prune deletes entries for days strictly older than cutoff and reports how
// many days were removed.
func (l TimeLedger) Prune(cutoff string) int {
	removed := 0
	for day := range l {
		if day < cutoff {
			delete(l, day)
			removed++
		}
	}
	return removed
}

// ActiveSession is the single in-memory tracking session. At most one exists
// at a time; it is flushed into the ledger on domain switch, pause, focus loss
// or the periodic flush tick.
type ActiveSession struct {
	Domain  string    `json:"domain"`
	StartAt time.Time `json:"startAt"`
}

type DomainTime struct {
	Domain    string `json:"domain"`
	ElapsedMs int64  `json:"elapsedMs"`
}
