package palette

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecentColors_Push(t *testing.T) {
	t.Run("Most recent first, deduplicated ignoring case", func(t *testing.T) {
		r := NewRecentColors(3)
		r.Push("#FF0000")
		r.Push("#00FF00")
		r.Push("#ff0000")

		assert.Equal(t, []string{"#ff0000", "#00FF00"}, r.List())
	})

	t.Run("Drops colors beyond the limit", func(t *testing.T) {
		r := NewRecentColors(2)
		r.Push("#111")
		r.Push("#222")
		r.Push("#333")

		assert.Equal(t, []string{"#333", "#222"}, r.List())
	})

	t.Run("Ignores empty colors", func(t *testing.T) {
		r := NewRecentColors(0)
		r.Push("   ")
		assert.Empty(t, r.List())
	})

	t.Run("List returns a copy", func(t *testing.T) {
		r := NewRecentColors(2)
		r.Push("#111")
		list := r.List()
		list[0] = "mutated"
		assert.Equal(t, []string{"#111"}, r.List())
	})
}

func TestRecentColors_Subscribe(t *testing.T) {
	r := NewRecentColors(4)

	var got [][]string
	unsubscribe := r.Subscribe(func(colors []string) {
		got = append(got, colors)
	})

	r.Push("#111")
	r.Push("#111")
	r.Push("#222")
	unsubscribe()
	unsubscribe()
	r.Push("#333")

	assert.Equal(t, [][]string{{"#111"}, {"#222", "#111"}}, got, "no notification for a no-op push or after unsubscribe")
}

func TestRecentColors_ListenersGetSeparateCopies(t *testing.T) {
	r := NewRecentColors(3)
	var seen []string
	r.Subscribe(func(colors []string) {
		colors[0] = "#000000"
	})
	r.Subscribe(func(colors []string) {
		seen = colors
	})

	r.Push("#FF0000")

	// Listener order is unspecified.
	assert.Equal(t, []string{"#FF0000"}, seen)
	assert.Equal(t, []string{"#FF0000"}, r.List())
}

func TestRecentColors_Concurrent(t *testing.T) {
	r := NewRecentColors(5)
	r.Subscribe(func([]string) {})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.Push([]string{"#111", "#222", "#333"}[i%3])
			_ = r.List()
		}(i)
	}
	wg.Wait()

	assert.Len(t, r.List(), 3)
}
