package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/lrstanley/go-ytdlp"
)

// ErrNoAudioStream is returned when a video resolves but exposes no usable audio format.
var ErrNoAudioStream = errors.New("no audio stream found")

// extractedInfo mirrors the subset of yt-dlp's info JSON the hub needs.
type extractedInfo struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Thumbnail  string  `json:"thumbnail"`
	Duration   float64 `json:"duration"`
	WebpageURL string  `json:"webpage_url"`
	Chapters   []struct {
		Title     string  `json:"title"`
		StartTime float64 `json:"start_time"`
	} `json:"chapters"`
	Formats []struct {
		URL    string  `json:"url"`
		Acodec string  `json:"acodec"`
		Abr    float64 `json:"abr"`
	} `json:"formats"`
}

// Resolver resolves videos through yt-dlp and caches results so repeat lookups
// (autoplay picks in particular) complete without a network round-trip.
type Resolver struct {
	logger *log.Logger

	mu    sync.RWMutex
	cache map[string]Video
}

// NewResolver creates a yt-dlp backed resolver.
func NewResolver(logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{
		logger: logger,
		cache:  make(map[string]Video),
	}
}

// Resolve looks up a URL or search term and returns a playable Video.
func (r *Resolver) Resolve(ctx context.Context, query string) (Video, error) {
	if video, ok := r.Cached(query); ok {
		return video, nil
	}

	dl := ytdlp.New().
		SkipDownload().
		DumpSingleJSON().
		NoPlaylist().
		NoWarnings().
		DefaultSearch("ytsearch")

	result, err := dl.Run(ctx, query)
	if err != nil {
		return Video{}, fmt.Errorf("resolve %q: %w", query, err)
	}

	var info extractedInfo
	if err := json.Unmarshal([]byte(result.Stdout), &info); err != nil {
		return Video{}, fmt.Errorf("parse video info for %q: %w", query, err)
	}

	video, err := videoFromInfo(info)
	if err != nil {
		return Video{}, err
	}

	r.mu.Lock()
	r.cache[query] = video
	if video.SourceURL != "" && video.SourceURL != query {
		r.cache[video.SourceURL] = video
	}
	r.mu.Unlock()

	r.logger.Printf("Resolved %q -> %q (%ds, %d chapters)", query, video.Title, video.Duration, len(video.Chapters))
	return video, nil
}

// Cached returns a previously resolved Video.
func (r *Resolver) Cached(query string) (Video, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	video, ok := r.cache[query]
	return video, ok
}

func videoFromInfo(info extractedInfo) (Video, error) {
	video := Video{
		ID:        info.ID,
		Title:     info.Title,
		Thumbnail: info.Thumbnail,
		Duration:  int(info.Duration),
		SourceURL: info.WebpageURL,
	}

	for _, chapter := range info.Chapters {
		if chapter.Title == "" {
			continue
		}
		video.Chapters = append(video.Chapters, Chapter{
			Title: chapter.Title,
			Start: int(chapter.StartTime),
		})
	}

	video.StreamURL = bestAudioURL(info)
	if video.StreamURL == "" {
		return Video{}, ErrNoAudioStream
	}
	return video, nil
}

// bestAudioURL picks the highest-bitrate opus stream, falling back to any
// format that carries audio.
func bestAudioURL(info extractedInfo) string {
	bestURL := ""
	bestAbr := -1.0
	for _, format := range info.Formats {
		if format.URL == "" || format.Acodec == "none" || format.Acodec == "" {
			continue
		}
		isOpus := strings.Contains(format.Acodec, "opus")
		if bestURL == "" || (isOpus && format.Abr > bestAbr) {
			bestURL = format.URL
			if isOpus {
				bestAbr = format.Abr
			}
		}
	}
	return bestURL
}
