package weather

import (
	"context"
	"strings"
	"time"
)

// Condition is a normalized weather class used for song matching.
type Condition string

const (
	ConditionClear        Condition = "clear"
	ConditionClouds       Condition = "clouds"
	ConditionDrizzle      Condition = "drizzle"
	ConditionRain         Condition = "rain"
	ConditionThunderstorm Condition = "thunderstorm"
	ConditionSnow         Condition = "snow"
	ConditionMist         Condition = "mist"
)

// ConditionOrder is the severity ordering used for nearest-match scoring.
var ConditionOrder = []Condition{
	ConditionClear,
	ConditionClouds,
	ConditionDrizzle,
	ConditionRain,
	ConditionThunderstorm,
	ConditionSnow,
	ConditionMist,
}

// ParseCondition normalizes a provider condition string. Dust and other
// atmospheric conditions fold into mist; unknown values do too.
func ParseCondition(s string) Condition {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return ConditionMist
	}
	switch fields[0] {
	case "clear":
		return ConditionClear
	case "clouds":
		return ConditionClouds
	case "drizzle":
		return ConditionDrizzle
	case "rain":
		return ConditionRain
	case "thunderstorm":
		return ConditionThunderstorm
	case "snow":
		return ConditionSnow
	default:
		return ConditionMist
	}
}

// ConditionIndex returns the position of c in ConditionOrder.
func ConditionIndex(c Condition) int {
	for i, candidate := range ConditionOrder {
		if candidate == c {
			return i
		}
	}
	return len(ConditionOrder) - 1
}

// TimePeriod buckets the day relative to sunrise and sunset.
type TimePeriod string

const (
	PeriodMorning TimePeriod = "morning"
	PeriodDay     TimePeriod = "day"
	PeriodEvening TimePeriod = "evening"
	PeriodNight   TimePeriod = "night"
)

// PeriodOrder is the day-cycle ordering used for nearest-match scoring.
var PeriodOrder = []TimePeriod{PeriodMorning, PeriodDay, PeriodEvening, PeriodNight}

// PeriodIndex returns the position of p in PeriodOrder.
func PeriodIndex(p TimePeriod) int {
	for i, candidate := range PeriodOrder {
		if candidate == p {
			return i
		}
	}
	return len(PeriodOrder) - 1
}

// ParsePeriod normalizes a time-of-day tag; unknown values bucket to night.
func ParsePeriod(s string) TimePeriod {
	switch strings.ToLower(s) {
	case "morning":
		return PeriodMorning
	case "day":
		return PeriodDay
	case "evening":
		return PeriodEvening
	default:
		return PeriodNight
	}
}

// Snapshot is one weather observation. Replaced wholesale on each successful
// poll; a stale snapshot is retained when a poll fails.
type Snapshot struct {
	Condition    Condition
	Description  string
	TemperatureC float64
	Sunrise      time.Time
	Sunset       time.Time
	CapturedAt   time.Time
}

// TimeOfDay buckets now against the snapshot's sunrise/sunset. Morning runs
// from half an hour before sunrise to midday, day until half an hour before
// sunset, and evening until two hours after sunset.
func (s Snapshot) TimeOfDay(now time.Time) TimePeriod {
	sunrise := s.Sunrise
	sunset := s.Sunset
	midday := sunrise.Add(sunset.Sub(sunrise) / 2)

	switch {
	case !now.After(sunrise.Add(-30 * time.Minute)):
		return PeriodNight
	case !now.After(midday):
		return PeriodMorning
	case !now.After(sunset.Add(-30 * time.Minute)):
		return PeriodDay
	case !now.After(sunset.Add(2 * time.Hour)):
		return PeriodEvening
	default:
		return PeriodNight
	}
}

// Summary renders the snapshot as "<period> <condition>".
func (s Snapshot) Summary(now time.Time) string {
	return string(s.TimeOfDay(now)) + " " + string(s.Condition)
}

// Default returns the snapshot used before the first successful poll:
// clear sky, 21C, sun up 06:00-18:00 local.
func Default(now time.Time) Snapshot {
	year, month, day := now.Date()
	return Snapshot{
		Condition:    ConditionClear,
		Description:  "Default weather",
		TemperatureC: 21,
		Sunrise:      time.Date(year, month, day, 6, 0, 0, 0, now.Location()),
		Sunset:       time.Date(year, month, day, 18, 0, 0, 0, now.Location()),
		CapturedAt:   now,
	}
}

// Provider fetches the current weather.
type Provider interface {
	Current(ctx context.Context) (Snapshot, error)
}
