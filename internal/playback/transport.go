package playback

import (
	"github.com/autobreezebeats/breeze-hub-go/internal/catalog"
)

// State is the transport machine state.
type State string

const (
	StateIdle    State = "idle"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
)

// prevChapterRewindSec: a prev_chapter this long after the current chapter's
// start rewinds to the chapter start instead of jumping back a chapter.
const prevChapterRewindSec = 2

// Transport tracks the active video's playback position. Elapsed is a
// wall-clock approximation advanced by Tick, corrected only at track
// boundaries. Owned by the orchestrator core, which serializes all access.
type Transport struct {
	state   State
	video   *catalog.Video
	elapsed int
	chapter int
}

// NewTransport returns an idle transport.
func NewTransport() *Transport {
	return &Transport{state: StateIdle, chapter: -1}
}

// Load installs a video and moves to Paused with elapsed reset.
func (t *Transport) Load(video catalog.Video) {
	t.video = &video
	t.state = StatePaused
	t.elapsed = 0
	t.chapter = video.ChapterAt(0)
}

// Reset drops the current video and returns to Idle.
func (t *Transport) Reset() {
	t.video = nil
	t.state = StateIdle
	t.elapsed = 0
	t.chapter = -1
}

// Play moves Paused to Playing. Reports whether anything changed.
func (t *Transport) Play() bool {
	if t.state != StatePaused {
		return false
	}
	t.state = StatePlaying
	return true
}

// Pause moves Playing to Paused. Reports whether anything changed.
func (t *Transport) Pause() bool {
	if t.state != StatePlaying {
		return false
	}
	t.state = StatePaused
	return true
}

// Tick advances elapsed by dt seconds while Playing, clamped to duration.
// completed reports that elapsed reached the video's duration; the caller
// drives the track-complete transition.
func (t *Transport) Tick(dt int) (completed, changed bool) {
	if t.state != StatePlaying || t.video == nil {
		return false, false
	}

	elapsed := t.elapsed + dt
	if elapsed >= t.video.Duration {
		elapsed = t.video.Duration
		completed = true
	}
	if elapsed != t.elapsed {
		t.elapsed = elapsed
		t.chapter = t.video.ChapterAt(elapsed)
		changed = true
	}
	return completed, changed
}

// NextChapter jumps to the next chapter's start offset. A no-op without
// chapters or at the final chapter.
func (t *Transport) NextChapter() bool {
	if t.video == nil || !t.video.HasChapters() {
		return false
	}
	if t.chapter >= len(t.video.Chapters)-1 {
		return false
	}
	t.chapter++
	t.elapsed = t.video.Chapters[t.chapter].Start
	return true
}

// PrevChapter rewinds to the current chapter's start when well into it,
// otherwise jumps to the previous chapter. A no-op without chapters or at
// the start of the first chapter.
func (t *Transport) PrevChapter() bool {
	if t.video == nil || !t.video.HasChapters() {
		return false
	}

	start := t.video.Chapters[t.chapter].Start
	if t.elapsed > start+prevChapterRewindSec {
		t.elapsed = start
		return true
	}
	if t.chapter == 0 {
		if t.elapsed != start {
			t.elapsed = start
			return true
		}
		return false
	}
	t.chapter--
	t.elapsed = t.video.Chapters[t.chapter].Start
	return true
}

// State returns the current machine state.
func (t *Transport) State() State { return t.state }

// Playing reports whether playback is running.
func (t *Transport) Playing() bool { return t.state == StatePlaying }

// Video returns the active video, or nil when idle.
func (t *Transport) Video() *catalog.Video { return t.video }

// Elapsed returns the approximate playback position in seconds.
func (t *Transport) Elapsed() int { return t.elapsed }

// Duration returns the active video's duration, or 0 when idle.
func (t *Transport) Duration() int {
	if t.video == nil {
		return 0
	}
	return t.video.Duration
}

// ChapterIndex returns the current chapter index, or -1 when not applicable.
func (t *Transport) ChapterIndex() int { return t.chapter }

// CurrentChapter returns the active chapter.
func (t *Transport) CurrentChapter() (catalog.Chapter, bool) {
	if t.video == nil || t.chapter < 0 || t.chapter >= len(t.video.Chapters) {
		return catalog.Chapter{}, false
	}
	return t.video.Chapters[t.chapter], true
}
