package playback

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/autobreezebeats/breeze-hub-go/internal/catalog"
)

func chapteredVideo() catalog.Video {
	return catalog.Video{
		ID:       "chaptered",
		Title:    "chaptered",
		Duration: 100,
		Chapters: []catalog.Chapter{
			{Title: "one", Start: 0},
			{Title: "two", Start: 30},
			{Title: "three", Start: 60},
		},
	}
}

func TestTransport_LoadMovesToPaused(t *testing.T) {
	tr := NewTransport()
	tr.Load(video("a"))

	require.Equal(t, StatePaused, tr.State())
	require.Equal(t, 0, tr.Elapsed())
	require.Equal(t, 100, tr.Duration())
}

func TestTransport_PlayPauseTransitions(t *testing.T) {
	tr := NewTransport()

	// Idle: neither transition fires.
	require.False(t, tr.Play())
	require.False(t, tr.Pause())

	tr.Load(video("a"))
	require.True(t, tr.Play())
	require.False(t, tr.Play())
	require.True(t, tr.Pause())
	require.False(t, tr.Pause())
}

func TestTransport_TickOnlyWhilePlaying(t *testing.T) {
	tr := NewTransport()
	tr.Load(video("a"))

	completed, changed := tr.Tick(1)
	require.False(t, completed)
	require.False(t, changed)
	require.Equal(t, 0, tr.Elapsed())

	tr.Play()
	completed, changed = tr.Tick(1)
	require.False(t, completed)
	require.True(t, changed)
	require.Equal(t, 1, tr.Elapsed())
}

func TestTransport_TickCompletesOnce(t *testing.T) {
	tr := NewTransport()
	v := video("a")
	v.Duration = 3
	tr.Load(v)
	tr.Play()

	tr.Tick(1)
	tr.Tick(1)
	completed, _ := tr.Tick(1)
	require.True(t, completed)
	require.Equal(t, 3, tr.Elapsed())

	// Elapsed is clamped; a further tick reports completion again only
	// because the caller has not reset yet, but never overshoots.
	completed, changed := tr.Tick(1)
	require.True(t, completed)
	require.False(t, changed)
	require.Equal(t, 3, tr.Elapsed())
}

func TestTransport_TickClampsOvershoot(t *testing.T) {
	tr := NewTransport()
	v := video("a")
	v.Duration = 10
	tr.Load(v)
	tr.Play()

	completed, changed := tr.Tick(25)
	require.True(t, completed)
	require.True(t, changed)
	require.Equal(t, 10, tr.Elapsed())
}

func TestTransport_ChapterFollowsElapsed(t *testing.T) {
	tr := NewTransport()
	tr.Load(chapteredVideo())
	tr.Play()

	require.Equal(t, 0, tr.ChapterIndex())
	tr.Tick(35)
	require.Equal(t, 1, tr.ChapterIndex())
	tr.Tick(30)
	require.Equal(t, 2, tr.ChapterIndex())
}

func TestTransport_NextChapter(t *testing.T) {
	tr := NewTransport()
	tr.Load(chapteredVideo())

	require.True(t, tr.NextChapter())
	require.Equal(t, 1, tr.ChapterIndex())
	require.Equal(t, 30, tr.Elapsed())

	require.True(t, tr.NextChapter())
	require.Equal(t, 2, tr.ChapterIndex())

	// Final chapter: no-op.
	require.False(t, tr.NextChapter())
	require.Equal(t, 60, tr.Elapsed())
}

func TestTransport_NextChapterWithoutChapters(t *testing.T) {
	tr := NewTransport()
	tr.Load(video("plain"))

	require.False(t, tr.NextChapter())
	require.False(t, tr.PrevChapter())
	require.Equal(t, -1, tr.ChapterIndex())
}

func TestTransport_PrevChapterRewindWindow(t *testing.T) {
	tr := NewTransport()
	tr.Load(chapteredVideo())
	tr.Play()
	tr.Tick(35)
	require.Equal(t, 1, tr.ChapterIndex())

	// Well into chapter two: rewind to its start.
	require.True(t, tr.PrevChapter())
	require.Equal(t, 1, tr.ChapterIndex())
	require.Equal(t, 30, tr.Elapsed())

	// At the chapter start: jump back a chapter.
	require.True(t, tr.PrevChapter())
	require.Equal(t, 0, tr.ChapterIndex())
	require.Equal(t, 0, tr.Elapsed())

	// Start of the first chapter: no-op.
	require.False(t, tr.PrevChapter())
}

func TestTransport_PrevChapterJustAfterBoundary(t *testing.T) {
	tr := NewTransport()
	tr.Load(chapteredVideo())
	tr.Play()
	tr.Tick(31)

	// Within the rewind window the jump goes a full chapter back.
	require.True(t, tr.PrevChapter())
	require.Equal(t, 0, tr.ChapterIndex())
	require.Equal(t, 0, tr.Elapsed())
}

func TestTransport_ResetReturnsToIdle(t *testing.T) {
	tr := NewTransport()
	tr.Load(chapteredVideo())
	tr.Play()
	tr.Tick(10)

	tr.Reset()
	require.Equal(t, StateIdle, tr.State())
	require.Nil(t, tr.Video())
	require.Equal(t, 0, tr.Elapsed())
	require.Equal(t, -1, tr.ChapterIndex())
}
