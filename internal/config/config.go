// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Camera  CameraConfig  `yaml:"camera"`
	Render  RenderConfig  `yaml:"render"`
	Scene   SceneConfig   `yaml:"scene"`
	Audio   AudioConfig   `yaml:"audio"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	FPSLimit   int    `yaml:"fps_limit"`
}

// CameraConfig holds projection and controller settings.
type CameraConfig struct {
	FovDegrees       float32 `yaml:"fov_degrees"`
	Near             float32 `yaml:"near"`
	Far              float32 `yaml:"far"`
	MoveSpeed        float32 `yaml:"move_speed"`
	TurnSpeed        float32 `yaml:"turn_speed"`
	MouseSensitivity float32 `yaml:"mouse_sensitivity"`
}

// RenderConfig holds portal traversal limits and output settings.
type RenderConfig struct {
	MaxPortalDepth int        `yaml:"max_portal_depth"`
	MaxStates      int        `yaml:"max_states"`
	FrameCapacity  int        `yaml:"frame_capacity"` // vertices per frame
	ClearColor     [3]float32 `yaml:"clear_color"`
	Wireframe      bool       `yaml:"wireframe"`
	ShowStats      bool       `yaml:"show_stats"`
}

// SceneConfig selects the scene to load. An empty path loads the built-in
// two-room demo.
type SceneConfig struct {
	Path string `yaml:"path"`
}

// AudioConfig holds portal cue settings.
type AudioConfig struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "hullgate",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Camera: CameraConfig{
			FovDegrees:       60,
			Near:             0.05,
			Far:              100,
			MoveSpeed:        3,
			TurnSpeed:        1.5,
			MouseSensitivity: 0.002,
		},
		Render: RenderConfig{
			MaxPortalDepth: 10,
			MaxStates:      4096,
			FrameCapacity:  960,
			ClearColor:     [3]float32{0.05, 0.05, 0.08},
		},
		Audio: AudioConfig{
			Enabled: true,
			Volume:  0.6,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	case c.Camera.FovDegrees <= 0 || c.Camera.FovDegrees >= 180:
		return fmt.Errorf("%w: fov_degrees %g not in (0, 180)", ErrInvalidConfig, c.Camera.FovDegrees)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("%w: need 0 < near < far, got near %g far %g", ErrInvalidConfig, c.Camera.Near, c.Camera.Far)
	case c.Render.MaxPortalDepth < 0:
		return fmt.Errorf("%w: max_portal_depth %d", ErrInvalidConfig, c.Render.MaxPortalDepth)
	case c.Render.FrameCapacity < 3 || c.Render.FrameCapacity > 65536:
		return fmt.Errorf("%w: frame_capacity %d not in [3, 65536]", ErrInvalidConfig, c.Render.FrameCapacity)
	case c.Audio.Volume < 0 || c.Audio.Volume > 1:
		return fmt.Errorf("%w: audio volume %g not in [0, 1]", ErrInvalidConfig, c.Audio.Volume)
	}
	return nil
}
