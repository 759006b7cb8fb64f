// Package beepsynth plays the game's audio cues through the speaker with
// gopxl/beep, synthesizing every sound instead of loading files.
package beepsynth

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/tomz197/lanerush/internal/audio"
)

const sampleRate = beep.SampleRate(44100)

// Synth synthesizes every cue on the fly; no audio files are needed.
type Synth struct {
	mu          sync.Mutex
	logger      *log.Logger
	mixer       *beep.Mixer
	music       *beep.Ctrl
	track       string
	initialized bool
}

var _ audio.Player = (*Synth)(nil)

// New creates a synthesizer. Call Init before cues are audible.
func New(logger *log.Logger) *Synth {
	if logger == nil {
		logger = log.Default()
	}
	return &Synth{
		logger: logger,
		mixer:  &beep.Mixer{},
	}
}

// Init opens the audio device. Calling it twice is a no-op.
func (s *Synth) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(s.mixer)
	s.initialized = true
	return nil
}

// Close silences everything and releases the device.
func (s *Synth) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	s.initialized = false
	s.music = nil
	s.track = ""
}

// PlaySound mixes a one-shot effect in.
func (s *Synth) PlaySound(effect string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}
	streamer := Effect(effect)
	if streamer == nil {
		s.logger.Warn("unknown sound effect", "effect", effect)
		return
	}
	speaker.Lock()
	s.mixer.Add(streamer)
	speaker.Unlock()
}

// PlayMusic switches the looping background track. Asking for the track
// already playing does nothing.
func (s *Synth) PlayMusic(track string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized || track == s.track {
		return
	}
	loop := Music(track)
	if loop == nil {
		s.logger.Warn("unknown music track", "track", track)
		return
	}

	speaker.Lock()
	if s.music != nil {
		s.music.Paused = true
		s.music.Streamer = nil
	}
	s.music = &beep.Ctrl{Streamer: loop}
	s.mixer.Add(s.music)
	speaker.Unlock()
	s.track = track
}

// Effect returns a finite streamer for the named effect, or nil if unknown.
func Effect(name string) beep.Streamer {
	switch name {
	case audio.SoundCrash:
		return volume(beep.Take(sampleRate.N(180*time.Millisecond), newSweep(220, 90)), 0.6)
	case audio.SoundExplosion:
		return volume(beep.Take(sampleRate.N(400*time.Millisecond), newNoise(0.9, 6)), 0.7)
	case audio.SoundThunder:
		return volume(beep.Take(sampleRate.N(1200*time.Millisecond), newNoise(0.6, 2)), 0.8)
	case audio.SoundLevelUp:
		return volume(beep.Seq(tone(660, 90*time.Millisecond), tone(880, 90*time.Millisecond), tone(1320, 140*time.Millisecond)), 0.4)
	}
	return nil
}

// Music returns an endless streamer for the named track, or nil if unknown.
func Music(track string) beep.Streamer {
	var notes []float64
	switch track {
	case audio.TrackMenu:
		notes = []float64{262, 330, 392, 330}
	case audio.TrackGame:
		notes = []float64{196, 196, 233, 262, 196, 175, 196, 147}
	default:
		return nil
	}
	return volume(&melody{notes: notes, note: 220 * time.Millisecond}, 0.15)
}

// melody replays a sequence of notes forever.
type melody struct {
	notes   []float64
	note    time.Duration
	current beep.Streamer
}

func (m *melody) Stream(samples [][2]float64) (int, bool) {
	filled := 0
	for filled < len(samples) {
		if m.current == nil {
			parts := make([]beep.Streamer, 0, len(m.notes))
			for _, f := range m.notes {
				parts = append(parts, tone(f, m.note))
			}
			m.current = beep.Seq(parts...)
		}
		n, ok := m.current.Stream(samples[filled:])
		filled += n
		if !ok || n == 0 {
			m.current = nil
		}
	}
	return filled, true
}

func (m *melody) Err() error { return nil }

// tone is a sine note of fixed length.
func tone(freq float64, d time.Duration) beep.Streamer {
	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return beep.Silence(sampleRate.N(d))
	}
	return beep.Take(sampleRate.N(d), sine)
}

// volume scales s by a linear gain.
func volume(s beep.Streamer, gain float64) beep.Streamer {
	if gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain)}
}

// sweep is a falling square-ish buzz.
type sweep struct {
	from, to float64
	pos      int
	length   int
}

func newSweep(from, to float64) *sweep {
	return &sweep{from: from, to: to, length: sampleRate.N(180 * time.Millisecond)}
}

func (g *sweep) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		t := float64(g.pos) / float64(sampleRate)
		progress := math.Min(float64(g.pos)/float64(g.length), 1)
		freq := g.from + (g.to-g.from)*progress
		v := 0.4 * math.Sin(2*math.Pi*freq*t)
		v += 0.2 * math.Sin(2*math.Pi*freq*2*t)
		v *= 1 - progress
		samples[i][0], samples[i][1] = v, v
		g.pos++
	}
	return len(samples), true
}

func (g *sweep) Err() error { return nil }

// noise is white noise with an exponential decay.
type noise struct {
	amp   float64
	decay float64 // Per second
	pos   int
	rng   *rand.Rand
}

func newNoise(amp, decay float64) *noise {
	return &noise{amp: amp, decay: decay, rng: rand.New(rand.NewSource(1))}
}

func (g *noise) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		t := float64(g.pos) / float64(sampleRate)
		v := g.amp * math.Exp(-g.decay*t) * (g.rng.Float64()*2 - 1)
		samples[i][0], samples[i][1] = v, v
		g.pos++
	}
	return len(samples), true
}

func (g *noise) Err() error { return nil }
