package playback

import (
	"errors"
	"iter"
	"time"

	"github.com/autobreezebeats/breeze-hub-go/internal/catalog"
)

// ErrEmptyQueue signals Advance on an empty queue. Not a failure: the
// track-complete transition treats it as the defined terminal case.
var ErrEmptyQueue = errors.New("queue is empty")

// Entry wraps a queued video with its enqueue time.
type Entry struct {
	Video      catalog.Video
	EnqueuedAt time.Time
}

// Queue is the ordered list of pending videos. FIFO for playback advance,
// insertion order preserved, duplicates allowed. Owned by the orchestrator
// core, which serializes all access.
type Queue struct {
	entries []Entry
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends a video. Never rejects a resolved video.
func (q *Queue) Enqueue(video catalog.Video) {
	q.entries = append(q.entries, Entry{Video: video, EnqueuedAt: time.Now()})
}

// Advance removes and returns the head entry.
func (q *Queue) Advance() (Entry, error) {
	if len(q.entries) == 0 {
		return Entry{}, ErrEmptyQueue
	}
	head := q.entries[0]
	q.entries = q.entries[1:]
	return head, nil
}

// Peek yields up to n entries front-to-back without mutating the queue.
// The returned sequence is restartable.
func (q *Queue) Peek(n int) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for i, entry := range q.entries {
			if i >= n || !yield(entry) {
				return
			}
		}
	}
}

// Len returns the number of pending entries.
func (q *Queue) Len() int {
	return len(q.entries)
}
