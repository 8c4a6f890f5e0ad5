package playback

import "sync"

// FakeHandle is an in-memory Handle for tests of code built on the controller.
type FakeHandle struct {
	mu       sync.Mutex
	playing  bool
	finished func()
	PlayErr  error
	Plays    int
	closed   int
}

func (f *FakeHandle) Play() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PlayErr != nil {
		return f.PlayErr
	}
	f.playing = true
	f.Plays++
	return nil
}

func (f *FakeHandle) Pause() {
	f.mu.Lock()
	f.playing = false
	f.mu.Unlock()
}

func (f *FakeHandle) Paused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.playing
}

func (f *FakeHandle) OnFinished(cb func()) {
	f.mu.Lock()
	f.finished = cb
	f.mu.Unlock()
}

// Close releases the handle. Closes counts the calls.
func (f *FakeHandle) Close() {
	f.mu.Lock()
	f.playing = false
	f.closed++
	f.mu.Unlock()
}

func (f *FakeHandle) Closes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Finish simulates playback reaching its end.
func (f *FakeHandle) Finish() {
	f.mu.Lock()
	f.playing = false
	cb := f.finished
	f.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// FakeControl records the playing state it was last given.
type FakeControl struct {
	mu      sync.Mutex
	playing bool
}

func (f *FakeControl) SetPlaying(playing bool) {
	f.mu.Lock()
	f.playing = playing
	f.mu.Unlock()
}

func (f *FakeControl) Playing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playing
}
