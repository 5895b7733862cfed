// Package config handles viewer configuration loading and management.
package config

// Config holds all settings.
type Config struct {
	Render    RenderConfig    `yaml:"render"`
	Camera    CameraConfig    `yaml:"camera"`
	Animation AnimationConfig `yaml:"animation"`
	Output    OutputConfig    `yaml:"output"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// RenderConfig holds render target and pipeline settings.
type RenderConfig struct {
	Width        int        `yaml:"width"`
	Height       int        `yaml:"height"`
	FitTerminal  bool       `yaml:"fit_terminal"` // Size the target to the terminal in the terminal viewer
	FPS          int        `yaml:"fps"`
	Mode         string     `yaml:"mode"`
	BackfaceCull bool       `yaml:"backface_cull"`
	Shaded       bool       `yaml:"shaded"`
	FlipV        bool       `yaml:"flip_v"`
	Light        [3]float64 `yaml:"light"` // Direction the light travels, view space
	Ambient      float64    `yaml:"ambient"`
	Grid         int        `yaml:"grid"` // Dot spacing in pixels, 0 disables
	Background   string     `yaml:"background"`
	GridColor    string     `yaml:"grid_color"`
	WireColor    string     `yaml:"wire_color"`
	PointColor   string     `yaml:"point_color"`
	PointSize    int        `yaml:"point_size"`
	Placeholder  string     `yaml:"placeholder"` // Texture for objects without one: fallback or checker
}

// CameraConfig holds the initial camera placement and projection.
type CameraConfig struct {
	Position  [3]float64 `yaml:"position"`
	Yaw       float64    `yaml:"yaw"`   // Degrees
	Pitch     float64    `yaml:"pitch"` // Degrees
	FOV       float64    `yaml:"fov"`   // Vertical, degrees
	Near      float64    `yaml:"near"`
	Far       float64    `yaml:"far"`
	MoveSpeed float64    `yaml:"move_speed"` // Units per key press
	TurnSpeed float64    `yaml:"turn_speed"` // Degrees per key press
}

// AnimationConfig holds the scene animation toggles.
type AnimationConfig struct {
	Translate          bool    `yaml:"translate"`
	Rotate             bool    `yaml:"rotate"`
	Scale              bool    `yaml:"scale"`
	SpinX              bool    `yaml:"spin_x"`
	SpinY              bool    `yaml:"spin_y"`
	SpinZ              bool    `yaml:"spin_z"`
	SpinRate           float64 `yaml:"spin_rate"` // Radians per second
	TranslateAmplitude float64 `yaml:"translate_amplitude"`
	ScaleAmplitude     float64 `yaml:"scale_amplitude"`
	Frequency          float64 `yaml:"frequency"` // Hz
}

// OutputConfig holds headless export settings.
type OutputConfig struct {
	Frames  int    `yaml:"frames"`
	Dir     string `yaml:"dir"`
	Scale   int    `yaml:"scale"` // Integer upscale of each frame
	Workers int    `yaml:"workers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Width:        512,
			Height:       384,
			FitTerminal:  true,
			FPS:          60,
			Mode:         "textured",
			BackfaceCull: true,
			Shaded:       true,
			FlipV:        false,
			Light:        [3]float64{0, 0, -1},
			Ambient:      0.2,
			Grid:         10,
			Background:   "#000000",
			GridColor:    "#333333",
			WireColor:    "#ffffff",
			PointColor:   "#ff0000",
			PointSize:    4,
			Placeholder:  "fallback",
		},
		Camera: CameraConfig{
			Position:  [3]float64{0, 0, 5},
			FOV:       90,
			Near:      0.1,
			Far:       100,
			MoveSpeed: 0.25,
			TurnSpeed: 3,
		},
		Animation: AnimationConfig{
			Rotate:             true,
			SpinY:              true,
			SpinRate:           0.6,
			TranslateAmplitude: 1,
			ScaleAmplitude:     0.25,
			Frequency:          0.5,
		},
		Output: OutputConfig{
			Frames:  60,
			Dir:     "out",
			Scale:   2,
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
