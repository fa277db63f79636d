// Package audio plays short synthesized cues for camera events such as
// crossing a portal or bumping into a wall.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

// DefaultSampleRate is the playback sample rate.
const DefaultSampleRate = beep.SampleRate(44100)

// ErrNotInitialized is returned when playing before Init.
var ErrNotInitialized = errors.New("audio not initialized")

// Cue identifies a sound.
type Cue int

const (
	CueTraverse Cue = iota
	CueCollision
	CueDepthLimit
	cueCount
)

func (c Cue) String() string {
	switch c {
	case CueTraverse:
		return "traverse"
	case CueCollision:
		return "collision"
	case CueDepthLimit:
		return "depth_limit"
	}
	return fmt.Sprintf("Cue(%d)", int(c))
}

// Tone describes a synthesized cue: a sine sweep with a short attack and
// an exponential decay.
type Tone struct {
	From, To  float64 // Hz
	Duration  time.Duration
	Amplitude float64
}

// DefaultTones are the built-in cue sounds.
var DefaultTones = [cueCount]Tone{
	CueTraverse:   {From: 440, To: 880, Duration: 180 * time.Millisecond, Amplitude: 0.35},
	CueCollision:  {From: 140, To: 90, Duration: 90 * time.Millisecond, Amplitude: 0.5},
	CueDepthLimit: {From: 660, To: 660, Duration: 60 * time.Millisecond, Amplitude: 0.2},
}

// Manager mixes cues onto the speaker.
type Manager struct {
	mu sync.RWMutex

	initialized bool
	sampleRate  beep.SampleRate
	volume      float64
	muted       bool

	mixer  *beep.Mixer
	custom [cueCount]*beep.Buffer
}

// New creates a manager at full volume. Call Init before Play.
func New() *Manager {
	return &Manager{
		sampleRate: DefaultSampleRate,
		volume:     1.0,
		mixer:      &beep.Mixer{},
	}
}

// Init opens the audio device.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}
	if err := speaker.Init(m.sampleRate, m.sampleRate.N(time.Second/30)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(m.mixer)
	m.initialized = true
	return nil
}

// Close stops playback.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initialized {
		speaker.Clear()
	}
	m.initialized = false
}

// IsInitialized reports whether Init succeeded.
func (m *Manager) IsInitialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// SetVolume sets the cue volume in [0, 1].
func (m *Manager) SetVolume(vol float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = clamp(vol, 0, 1)
}

// Volume returns the cue volume.
func (m *Manager) Volume() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.volume
}

// SetMuted silences all cues without changing the volume.
func (m *Manager) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = muted
}

// Muted reports whether cues are silenced.
func (m *Manager) Muted() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.muted
}

// LoadCueWAV replaces a built-in cue with WAV data, resampled to the
// playback rate.
func (m *Manager) LoadCueWAV(c Cue, data []byte) error {
	if c < 0 || c >= cueCount {
		return fmt.Errorf("unknown cue %v", c)
	}
	streamer, format, err := wav.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return fmt.Errorf("decode wav: %w", err)
	}
	defer streamer.Close()

	m.mu.Lock()
	defer m.mu.Unlock()

	var s beep.Streamer = streamer
	if format.SampleRate != m.sampleRate {
		s = beep.Resample(4, format.SampleRate, m.sampleRate, streamer)
	}
	format.SampleRate = m.sampleRate
	buf := beep.NewBuffer(format)
	buf.Append(s)
	m.custom[c] = buf
	return nil
}

// Play starts cue c. Cues overlap freely.
func (m *Manager) Play(c Cue) error {
	if c < 0 || c >= cueCount {
		return fmt.Errorf("unknown cue %v", c)
	}

	m.mu.RLock()
	initialized := m.initialized
	vol := m.volume
	muted := m.muted
	custom := m.custom[c]
	sr := m.sampleRate
	m.mu.RUnlock()

	if !initialized {
		return ErrNotInitialized
	}
	if muted || vol <= 0 {
		return nil
	}

	var s beep.Streamer
	if custom != nil {
		s = custom.Streamer(0, custom.Len())
	} else {
		s = Synthesize(DefaultTones[c], sr)
	}

	speaker.Lock()
	m.mixer.Add(&effects.Volume{
		Streamer: s,
		Base:     2,
		Volume:   volumeToLog2(vol),
	})
	speaker.Unlock()
	return nil
}

// Synthesize renders t as a finite streamer at sample rate sr.
func Synthesize(t Tone, sr beep.SampleRate) beep.Streamer {
	total := sr.N(t.Duration)
	attack := max(1, sr.N(5*time.Millisecond))
	rate := float64(sr)

	var phase float64
	i := 0
	osc := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for k := range samples {
			progress := float64(i) / float64(max(total, 1))
			freq := t.From + (t.To-t.From)*progress
			env := math.Exp(-4 * progress)
			if i < attack {
				env *= float64(i) / float64(attack)
			}
			v := t.Amplitude * env * math.Sin(phase)
			samples[k][0], samples[k][1] = v, v

			phase += 2 * math.Pi * freq / rate
			if phase > 2*math.Pi {
				phase -= 2 * math.Pi
			}
			i++
		}
		return len(samples), true
	})
	return beep.Take(total, osc)
}

// volumeToLog2 maps a linear volume to the exponent effects.Volume applies
// with base 2.
func volumeToLog2(vol float64) float64 {
	if vol <= 0 {
		return -10
	}
	return math.Log2(vol)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
