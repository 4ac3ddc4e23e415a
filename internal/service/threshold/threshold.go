// internal/service/threshold/threshold.go
package threshold

import (
	"time"

	"github.com/dinerozz/focus-guard-backend/internal/entity"
)

// Evaluate maps elapsed active time to an escalation tier. The table is
// ordered ascending by MinElapsed and scanned from the highest tier down, so
// a session that blows straight past a low tier gets the higher tier's
// stricter repeat interval. Below the lowest tier there is no escalation and
// ok is false.
func Evaluate(elapsed time.Duration, table entity.TierTable) (entity.Tier, bool) {
	for i := len(table) - 1; i >= 0; i-- {
		if elapsed >= table[i].MinElapsed {
			return table[i], true
		}
	}
	return entity.Tier{}, false
}
