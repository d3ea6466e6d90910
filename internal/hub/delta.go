package hub

import (
	"time"

	"github.com/autobreezebeats/breeze-hub-go/internal/catalog"
	"github.com/autobreezebeats/breeze-hub-go/internal/devices"
	"github.com/autobreezebeats/breeze-hub-go/internal/weather"
)

// VideoInfo is the observer-facing video summary.
type VideoInfo struct {
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	Duration  int    `json:"duration"`
}

// NewVideoInfo summarizes a resolved video.
func NewVideoInfo(video catalog.Video) VideoInfo {
	return VideoInfo{
		Title:     video.Title,
		Thumbnail: video.Thumbnail,
		Duration:  video.Duration,
	}
}

// ChapterInfo is the observer-facing chapter marker.
type ChapterInfo struct {
	Title string `json:"title"`
	Time  int    `json:"time"`
}

// WeatherInfo is the observer-facing weather summary.
type WeatherInfo struct {
	Weather     string  `json:"weather"`
	Summary     string  `json:"summary"`
	Description string  `json:"description"`
	Temperature float64 `json:"temperature"`
	Sunrise     string  `json:"sunrise"`
	Sunset      string  `json:"sunset"`
	TimeOfDay   string  `json:"tod"`
	CapturedAt  string  `json:"captured_at"`
}

// NewWeatherInfo renders a snapshot for observers.
func NewWeatherInfo(snapshot weather.Snapshot, now time.Time) WeatherInfo {
	return WeatherInfo{
		Weather:     string(snapshot.Condition),
		Summary:     snapshot.Summary(now),
		Description: snapshot.Description,
		Temperature: snapshot.TemperatureC,
		Sunrise:     snapshot.Sunrise.Local().Format(time.RFC3339),
		Sunset:      snapshot.Sunset.Local().Format(time.RFC3339),
		TimeOfDay:   string(snapshot.TimeOfDay(now)),
		CapturedAt:  snapshot.CapturedAt.UTC().Format(time.RFC3339),
	}
}

// Delta is one outbound state message. Field presence means "this aspect
// changed"; absent fields are unchanged. Current carries a VideoInfo, or
// false for "nothing playing".
type Delta struct {
	Elapsed        *int              `json:"elapsed,omitempty"`
	Duration       *int              `json:"duration,omitempty"`
	Playing        *bool             `json:"playing,omitempty"`
	Current        any               `json:"current,omitempty"`
	Queue          *[]VideoInfo      `json:"queue,omitempty"`
	Chapters       *bool             `json:"chapters,omitempty"`
	CurrentChapter *ChapterInfo      `json:"current_chapter,omitempty"`
	Devices        *[]devices.Device `json:"devices,omitempty"`
	Autoplay       *bool             `json:"autoplay,omitempty"`
	Weather        *WeatherInfo      `json:"weather,omitempty"`
}

// Empty reports whether the delta carries no fields at all.
func (d Delta) Empty() bool {
	return d.Elapsed == nil && d.Duration == nil && d.Playing == nil &&
		d.Current == nil && d.Queue == nil && d.Chapters == nil &&
		d.CurrentChapter == nil && d.Devices == nil && d.Autoplay == nil &&
		d.Weather == nil
}
