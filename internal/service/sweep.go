package service

import (
	"time"

	"github.com/iliyamo/bola-na-rede/internal/model"
)

// DefaultGrace is how long a match stays listed after it starts.
const DefaultGrace = time.Hour

// Sweep splits records into the ones still visible at now and the ones whose
// start plus grace is at or before now.  Start times are read in loc.  A
// record whose date or time does not parse is treated as expired.  Order is
// preserved in both results.
func Sweep(records []model.Match, now time.Time, loc *time.Location, grace time.Duration) (kept, expired []model.Match) {
	kept = make([]model.Match, 0, len(records))
	for _, m := range records {
		start, err := ParseSchedule(m.Date, m.Time, loc)
		if err != nil || !start.Add(grace).After(now) {
			expired = append(expired, m)
			continue
		}
		kept = append(kept, m)
	}
	return kept, expired
}
