package catalog

import "context"

// Chapter is a named offset within a video.
type Chapter struct {
	Title string `json:"title"`
	Start int    `json:"time"`
}

// Video is a resolved, playable media descriptor. Immutable once resolved.
type Video struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Thumbnail string    `json:"thumbnail"`
	Duration  int       `json:"duration"`
	Chapters  []Chapter `json:"chapters,omitempty"`
	SourceURL string    `json:"-"`
	StreamURL string    `json:"-"`
}

// HasChapters reports whether chapter navigation applies to this video.
func (v Video) HasChapters() bool {
	return len(v.Chapters) > 0
}

// ChapterAt returns the index of the chapter covering the given elapsed offset.
// Returns -1 when the video has no chapters.
func (v Video) ChapterAt(elapsed int) int {
	if !v.HasChapters() {
		return -1
	}
	current := 0
	for i, chapter := range v.Chapters {
		if chapter.Start > elapsed {
			break
		}
		current = i
	}
	return current
}

// Provider resolves search terms or URLs into playable Videos.
type Provider interface {
	// Resolve performs a (possibly slow) lookup against the hosting service.
	Resolve(ctx context.Context, query string) (Video, error)
	// Cached returns a previously resolved Video without any network round-trip.
	Cached(query string) (Video, bool)
}
