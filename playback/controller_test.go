package playback

import (
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	h   *FakeHandle
	ctl *FakeControl
}

func newItems(n int) []item {
	items := make([]item, n)
	for i := range items {
		items[i] = item{h: &FakeHandle{}, ctl: &FakeControl{}}
	}
	return items
}

func playingCount(items []item) (handles, controls int) {
	for _, it := range items {
		if !it.h.Paused() {
			handles++
		}
		if it.ctl.Playing() {
			controls++
		}
	}
	return
}

func TestToggleStartsPausedItem(t *testing.T) {
	c := New(zerolog.Nop())
	it := newItems(1)[0]
	activated := 0

	c.Toggle(it.h, it.ctl, func() { activated++ }, nil)

	assert.False(t, it.h.Paused())
	assert.True(t, it.ctl.Playing())
	assert.Equal(t, 1, activated)
	h, ctl, ok := c.Active()
	require.True(t, ok)
	assert.Equal(t, Handle(it.h), h)
	assert.Equal(t, Control(it.ctl), ctl)
}

func TestToggleTwiceReturnsToPaused(t *testing.T) {
	c := New(zerolog.Nop())
	it := newItems(1)[0]
	deactivated := 0

	c.Toggle(it.h, it.ctl, nil, func() { deactivated++ })
	c.Toggle(it.h, it.ctl, nil, func() { deactivated++ })

	assert.True(t, it.h.Paused())
	assert.False(t, it.ctl.Playing())
	assert.Equal(t, 1, deactivated)
	_, _, ok := c.Active()
	assert.False(t, ok)
}

func TestSwitchingItemsDeactivatesPreviousFirst(t *testing.T) {
	c := New(zerolog.Nop())
	items := newItems(2)
	a, b := items[0], items[1]
	var events []string

	c.Toggle(a.h, a.ctl, func() { events = append(events, "a on") }, func() { events = append(events, "a off") })
	c.Toggle(b.h, b.ctl, func() { events = append(events, "b on") }, func() { events = append(events, "b off") })

	assert.Equal(t, []string{"a on", "a off", "b on"}, events)
	assert.True(t, a.h.Paused())
	assert.False(t, a.ctl.Playing())
	assert.False(t, b.h.Paused())
	assert.True(t, b.ctl.Playing())
	assert.True(t, c.IsActive(b.h))
}

func TestNaturalEndClearsActiveItem(t *testing.T) {
	c := New(zerolog.Nop())
	it := newItems(1)[0]
	deactivated := 0

	c.Toggle(it.h, it.ctl, nil, func() { deactivated++ })
	it.h.Finish()

	assert.False(t, it.ctl.Playing())
	assert.Equal(t, 1, deactivated)
	_, _, ok := c.Active()
	assert.False(t, ok)

	// replays from the start after finishing
	c.Toggle(it.h, it.ctl, nil, nil)
	assert.True(t, it.ctl.Playing())
	assert.Equal(t, 2, it.h.Plays)
}

func TestStaleFinishOnlyClearsOwnControl(t *testing.T) {
	c := New(zerolog.Nop())
	items := newItems(2)
	a, b := items[0], items[1]
	aOff := 0

	c.Toggle(a.h, a.ctl, nil, func() { aOff++ })
	c.Toggle(b.h, b.ctl, nil, nil)
	require.Equal(t, 1, aOff)

	a.h.Finish()

	assert.Equal(t, 1, aOff)
	assert.True(t, c.IsActive(b.h))
	assert.True(t, b.ctl.Playing())
}

func TestPlayFailureLeavesNothingActive(t *testing.T) {
	c := New(zerolog.Nop())
	items := newItems(2)
	a, b := items[0], items[1]
	b.h.PlayErr = errors.New("no device")
	bOn := 0

	c.Toggle(a.h, a.ctl, nil, nil)
	c.Toggle(b.h, b.ctl, func() { bOn++ }, nil)

	assert.Equal(t, 0, bOn)
	assert.False(t, b.ctl.Playing())
	assert.True(t, a.h.Paused())
	_, _, ok := c.Active()
	assert.False(t, ok)
}

func TestNilHandleIsNoop(t *testing.T) {
	c := New(zerolog.Nop())
	it := newItems(1)[0]
	c.Toggle(it.h, it.ctl, nil, nil)

	c.Toggle(nil, &FakeControl{}, func() { t.Fatal("hook ran") }, nil)

	assert.True(t, c.IsActive(it.h))
}

func TestNilControl(t *testing.T) {
	c := New(zerolog.Nop())
	h := &FakeHandle{}

	c.Toggle(h, nil, nil, nil)
	assert.False(t, h.Paused())
	c.Toggle(h, nil, nil, nil)
	assert.True(t, h.Paused())
}

func TestStopRunsDeactivationHook(t *testing.T) {
	c := New(zerolog.Nop())
	it := newItems(1)[0]
	off := 0
	c.Toggle(it.h, it.ctl, nil, func() { off++ })

	c.Stop()
	c.Stop()

	assert.Equal(t, 1, off)
	assert.True(t, it.h.Paused())
	assert.False(t, it.ctl.Playing())
}

func TestHooksMayReadControllerState(t *testing.T) {
	c := New(zerolog.Nop())
	it := newItems(1)[0]
	var sawActive bool
	c.Toggle(it.h, it.ctl, func() { sawActive = c.IsActive(it.h) }, nil)
	assert.True(t, sawActive)
}

func TestAtMostOnePlayingUnderRandomToggles(t *testing.T) {
	c := New(zerolog.Nop())
	items := newItems(6)
	rnd := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		it := items[rnd.Intn(len(items))]
		if rnd.Intn(5) == 0 {
			it.h.Finish()
		} else {
			c.Toggle(it.h, it.ctl, nil, nil)
		}

		handles, controls := playingCount(items)
		require.LessOrEqual(t, handles, 1)
		require.LessOrEqual(t, controls, 1)

		h, ctl, ok := c.Active()
		if ok {
			require.False(t, h.Paused())
			require.True(t, ctl.(*FakeControl).Playing())
		} else {
			require.Nil(t, ctl)
		}
	}
}

func TestConcurrentFinishAndToggle(t *testing.T) {
	c := New(zerolog.Nop())
	items := newItems(4)
	var wg sync.WaitGroup

	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rnd := rand.New(rand.NewSource(seed))
			for i := 0; i < 200; i++ {
				it := items[rnd.Intn(len(items))]
				if rnd.Intn(3) == 0 {
					it.h.Finish()
				} else {
					c.Toggle(it.h, it.ctl, nil, nil)
				}
			}
		}(int64(g))
	}
	wg.Wait()

	c.Stop()
	handles, _ := playingCount(items)
	assert.Equal(t, 0, handles)
}

func TestDefaultController(t *testing.T) {
	it := newItems(1)[0]
	Toggle(it.h, it.ctl, nil, nil)
	assert.True(t, Default().IsActive(it.h))
	Default().Stop()
	assert.False(t, Default().IsActive(it.h))
}
