package audio

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/rs/zerolog"
)

const (
	loadTimeout     = 15 * time.Second
	lookaheadSpan   = 2 * time.Second
	resampleQuality = 4
)

// Track is a lazily loaded playable track. It is loaded on the first Play and
// restarts from the beginning when played again after reaching its end.
type Track struct {
	out    Output
	source Source
	log    zerolog.Logger

	mu       sync.Mutex
	stream   beep.StreamSeekCloser
	buffered *lookahead
	format   beep.Format
	ctrl     *beep.Ctrl
	ended    bool
	finished func()
}

// NewTrack returns a track that streams rawURL into out.
func NewTrack(out Output, client *http.Client, rawURL string, log zerolog.Logger) *Track {
	return NewTrackFromSource(out, HTTPSource(client, rawURL), log.With().Str("url", rawURL).Logger())
}

func NewTrackFromSource(out Output, source Source, log zerolog.Logger) *Track {
	return &Track{out: out, source: source, log: log}
}

func (t *Track) Play() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ctrl != nil && !t.ended {
		t.out.Lock()
		t.ctrl.Paused = false
		t.out.Unlock()
		return nil
	}

	if t.buffered == nil {
		if err := t.load(); err != nil {
			return err
		}
	} else {
		t.out.Lock()
		err := t.buffered.Seek(0)
		t.out.Unlock()
		if err != nil {
			return err
		}
	}

	var s beep.Streamer = t.buffered
	if t.format.SampleRate != t.out.SampleRate() {
		s = beep.Resample(resampleQuality, t.format.SampleRate, t.out.SampleRate(), s)
	}

	ctrl := &beep.Ctrl{Streamer: s}
	seq := beep.Seq(ctrl, beep.Callback(func() {
		// the output calls this while holding its lock
		go t.end(ctrl)
	}))
	if err := t.out.Add(seq); err != nil {
		return err
	}

	t.ctrl = ctrl
	t.ended = false
	return nil
}

func (t *Track) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ctrl == nil || t.ended {
		return
	}
	t.out.Lock()
	t.ctrl.Paused = true
	t.out.Unlock()
}

func (t *Track) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ctrl == nil || t.ended {
		return true
	}
	t.out.Lock()
	defer t.out.Unlock()
	return t.ctrl.Paused
}

func (t *Track) OnFinished(cb func()) {
	t.mu.Lock()
	t.finished = cb
	t.mu.Unlock()
}

// Close releases the decoded stream. The track must not be played afterwards.
func (t *Track) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ctrl != nil {
		t.out.Lock()
		t.ctrl.Paused = true
		t.ctrl.Streamer = nil
		t.out.Unlock()
		t.ctrl = nil
	}
	if t.buffered != nil {
		t.buffered.Close()
		t.buffered = nil
	}
	if t.stream != nil {
		if err := t.stream.Close(); err != nil {
			t.log.Error().Err(err).Msg("failed to close stream")
		}
		t.stream = nil
	}
	t.ended = true
}

func (t *Track) load() error {
	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	stream, format, err := t.source(ctx)
	if err != nil {
		return err
	}
	t.log.Debug().Int("sample_rate", int(format.SampleRate)).Int("channels", format.NumChannels).Msg("track loaded")

	t.stream = stream
	t.buffered = newLookahead(stream, format.SampleRate.N(lookaheadSpan))
	t.format = format
	return nil
}

func (t *Track) end(ctrl *beep.Ctrl) {
	t.mu.Lock()
	if t.ctrl != ctrl {
		t.mu.Unlock()
		return
	}
	t.ended = true
	cb := t.finished
	t.mu.Unlock()

	if cb != nil {
		cb()
	}
}
