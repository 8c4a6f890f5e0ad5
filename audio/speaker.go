// Package audio plays remote tracks through the local sound device. Tracks
// implement playback.Handle.
package audio

import (
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// DefaultSampleRate is the rate the sound device is opened with.
const DefaultSampleRate = 44100

// Output is where decoded tracks are mixed. Lock and Unlock guard every
// change to a streamer that the output may be reading.
type Output interface {
	SampleRate() beep.SampleRate
	Add(s beep.Streamer) error
	Lock()
	Unlock()
}

// Speaker mixes all tracks into the process sound device. The device is
// opened on first use.
type Speaker struct {
	sampleRate beep.SampleRate
	mixer      *beep.Mixer

	once    sync.Once
	initErr error
}

func NewSpeaker(sampleRate int) *Speaker {
	return &Speaker{
		sampleRate: beep.SampleRate(sampleRate),
		mixer:      &beep.Mixer{},
	}
}

func (s *Speaker) SampleRate() beep.SampleRate {
	return s.sampleRate
}

func (s *Speaker) init() error {
	s.once.Do(func() {
		if s.initErr = speaker.Init(s.sampleRate, s.sampleRate.N(time.Second/4)); s.initErr != nil {
			return
		}
		speaker.Play(s.mixer)
	})
	return s.initErr
}

func (s *Speaker) Add(st beep.Streamer) error {
	if err := s.init(); err != nil {
		return err
	}
	speaker.Lock()
	s.mixer.Add(st)
	speaker.Unlock()
	return nil
}

func (s *Speaker) Lock() {
	speaker.Lock()
}

func (s *Speaker) Unlock() {
	speaker.Unlock()
}

// Close silences everything still in the mixer.
func (s *Speaker) Close() {
	if s.initErr != nil {
		return
	}
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
}
