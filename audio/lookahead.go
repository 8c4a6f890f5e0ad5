package audio

import (
	"sync"

	"github.com/faiface/beep"
)

const lookaheadChunk = 4 * 1024

// lookahead decodes ahead of the sound device on its own goroutine so a slow
// decode never starves the speaker.
type lookahead struct {
	mu  sync.Mutex
	src beep.StreamSeeker

	chunks   chan [][2]float64
	current  [][2]float64
	quit     chan struct{}
	position int
}

func newLookahead(src beep.StreamSeeker, capacity int) *lookahead {
	l := &lookahead{src: src}
	l.start(capacity)
	return l
}

func (l *lookahead) start(capacity int) {
	n := capacity / lookaheadChunk
	if n < 1 {
		n = 1
	}
	l.chunks = make(chan [][2]float64, n)
	l.quit = make(chan struct{})

	go func(src beep.StreamSeeker, chunks chan [][2]float64, quit chan struct{}) {
		defer close(chunks)
		for {
			data := make([][2]float64, lookaheadChunk)
			n, ok := src.Stream(data)
			if n > 0 {
				select {
				case chunks <- data[:n]:
				case <-quit:
					return
				}
			}
			if !ok {
				return
			}
		}
	}(l.src, l.chunks, l.quit)
}

func (l *lookahead) Stream(samples [][2]float64) (int, bool) {
	filled := 0
	for filled < len(samples) {
		if len(l.current) == 0 {
			chunk, open := <-l.chunks
			if !open {
				return filled, filled > 0
			}
			l.current = chunk
		}
		n := copy(samples[filled:], l.current)
		l.current = l.current[n:]
		filled += n
		l.position += n
	}
	return filled, true
}

func (l *lookahead) Err() error {
	return l.src.Err()
}

func (l *lookahead) Len() int {
	return l.src.Len()
}

func (l *lookahead) Position() int {
	return l.position
}

// Seek stops the decoding goroutine, moves the source and restarts decoding
// from p.
func (l *lookahead) Seek(p int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	capacity := cap(l.chunks) * lookaheadChunk
	l.stop()
	for range l.chunks {
	}

	err := l.src.Seek(p)
	if err == nil {
		l.position = p
	}
	l.current = nil
	l.start(capacity)
	return err
}

func (l *lookahead) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stop()
}

func (l *lookahead) stop() {
	select {
	case <-l.quit:
	default:
		close(l.quit)
	}
}
