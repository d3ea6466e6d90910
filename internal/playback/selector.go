package playback

import (
	"log"
	"sort"
	"time"

	"github.com/autobreezebeats/breeze-hub-go/internal/catalog"
	"github.com/autobreezebeats/breeze-hub-go/internal/weather"
)

// Selector scores curated entries against the current weather and time of
// day. Deterministic given identical inputs and resolves in one bounded step:
// no network calls happen here.
type Selector struct {
	catalog *catalog.CuratedCatalog
	logger  *log.Logger
}

// NewSelector creates a selector over the curated catalog.
func NewSelector(curated *catalog.CuratedCatalog, logger *log.Logger) *Selector {
	if logger == nil {
		logger = log.Default()
	}
	return &Selector{catalog: curated, logger: logger}
}

// Pick selects the curated entry best matching the snapshot and time of day.
// When useWeather is false (no snapshot ever captured) only the time rule
// applies. Without an exact match the nearest-ranked entry wins, catalog
// order breaking ties; returns false only for an empty catalog.
func (s *Selector) Pick(snapshot weather.Snapshot, now time.Time, useWeather bool) (catalog.CuratedEntry, bool) {
	if len(s.catalog.Songs) == 0 {
		return catalog.CuratedEntry{}, false
	}

	conditionIdx := weather.ConditionIndex(snapshot.Condition)
	periodIdx := weather.PeriodIndex(snapshot.TimeOfDay(now))

	type ranked struct {
		rank  int
		entry catalog.CuratedEntry
	}
	candidates := make([]ranked, 0, len(s.catalog.Songs))
	for _, entry := range s.catalog.Songs {
		timeDist := periodDistance(periodIdx, entry.Times)
		rank := timeDist
		if useWeather {
			// Correct weather outranks correct time of day.
			rank = conditionDistance(conditionIdx, entry.Weather)*10 + timeDist
		}
		candidates = append(candidates, ranked{rank: rank, entry: entry})
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].rank < candidates[b].rank
	})

	best := candidates[0]
	if best.rank > 0 {
		s.logger.Printf("No curated entry exactly matches %s, using nearest (rank %d)", snapshot.Summary(now), best.rank)
	}
	return best.entry, true
}

func conditionDistance(target int, tags []string) int {
	if len(tags) == 0 {
		return 0
	}
	best := -1
	for _, tag := range tags {
		dist := abs(weather.ConditionIndex(weather.ParseCondition(tag)) - target)
		if best < 0 || dist < best {
			best = dist
		}
	}
	return best
}

func periodDistance(target int, tags []string) int {
	if len(tags) == 0 {
		return 0
	}
	best := -1
	for _, tag := range tags {
		dist := abs(weather.PeriodIndex(weather.ParsePeriod(tag)) - target)
		if best < 0 || dist < best {
			best = dist
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
