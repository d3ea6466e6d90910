package playback

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/autobreezebeats/breeze-hub-go/internal/catalog"
)

func video(title string) catalog.Video {
	return catalog.Video{ID: title, Title: title, Duration: 100}
}

func TestQueue_AdvanceIsFIFO(t *testing.T) {
	q := NewQueue()
	q.Enqueue(video("first"))
	q.Enqueue(video("second"))
	q.Enqueue(video("third"))

	entry, err := q.Advance()
	require.NoError(t, err)
	require.Equal(t, "first", entry.Video.Title)

	entry, err = q.Advance()
	require.NoError(t, err)
	require.Equal(t, "second", entry.Video.Title)

	require.Equal(t, 1, q.Len())
}

func TestQueue_AdvanceEmpty(t *testing.T) {
	q := NewQueue()

	_, err := q.Advance()
	require.ErrorIs(t, err, ErrEmptyQueue)
}

func TestQueue_AllowsDuplicates(t *testing.T) {
	q := NewQueue()
	q.Enqueue(video("same"))
	q.Enqueue(video("same"))

	require.Equal(t, 2, q.Len())
}

func TestQueue_PeekDoesNotMutate(t *testing.T) {
	q := NewQueue()
	q.Enqueue(video("a"))
	q.Enqueue(video("b"))
	q.Enqueue(video("c"))

	titles := []string{}
	for entry := range q.Peek(2) {
		titles = append(titles, entry.Video.Title)
	}
	require.Equal(t, []string{"a", "b"}, titles)
	require.Equal(t, 3, q.Len())
}

func TestQueue_PeekIsRestartable(t *testing.T) {
	q := NewQueue()
	q.Enqueue(video("a"))
	q.Enqueue(video("b"))

	seq := q.Peek(5)
	for range 2 {
		titles := []string{}
		for entry := range seq {
			titles = append(titles, entry.Video.Title)
		}
		require.Equal(t, []string{"a", "b"}, titles)
	}
}

func TestQueue_PeekStopsEarly(t *testing.T) {
	q := NewQueue()
	q.Enqueue(video("a"))
	q.Enqueue(video("b"))

	count := 0
	for range q.Peek(5) {
		count++
		break
	}
	require.Equal(t, 1, count)
}
