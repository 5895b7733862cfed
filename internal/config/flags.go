package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagMode     = flag.String("mode", "", "Render mode: points, wireframe, filled, wireframe+filled, textured, wireframe+textured")
	flagWidth    = flag.Int("width", 0, "Render target width in pixels")
	flagHeight   = flag.Int("height", 0, "Render target height in pixels")
	flagFPS      = flag.Int("fps", 0, "Target frames per second")
	flagLogLevel = flag.String("log-level", "", "Log level: debug, info, warn, error")
	flagLogFile  = flag.String("log-file", "", "Also write logs to this file, rotated")
	flagAssets   = flag.String("assets", "", "Directory for mesh and texture paths (default: scene file directory)")
	flagHeadless = flag.Bool("headless", false, "Render frames to PNG files instead of the terminal")
	flagFrames   = flag.Int("frames", 0, "Number of frames to export in headless mode")
	flagOut      = flag.String("out", "", "Output directory for headless frames")
	flagScale    = flag.Int("scale", 0, "Integer upscale of exported frames")
	flagWindow   = flag.Bool("window", false, "Open a desktop window instead of using the terminal")
	flagSave     = flag.Bool("save-config", false, "Write the effective config to the user config directory and exit")
	flagWrite    = flag.String("write-config", "", "Write the effective config to this path and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	return *flagConfig
}

// AssetsDir returns the -assets directory, or "" for the default.
func AssetsDir() string {
	return *flagAssets
}

// Headless reports whether -headless was given.
func Headless() bool {
	return *flagHeadless
}

// Window reports whether -window was given.
func Window() bool {
	return *flagWindow
}

// SaveRequested reports whether -save-config or -write-config was given.
func SaveRequested() bool {
	return *flagSave || *flagWrite != ""
}

// WriteConfigPath returns the -write-config path, or "".
func WriteConfigPath() string {
	return *flagWrite
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagMode != "" {
		cfg.Render.Mode = *flagMode
	}
	if *flagWidth > 0 {
		cfg.Render.Width = *flagWidth
		cfg.Render.FitTerminal = false
	}
	if *flagHeight > 0 {
		cfg.Render.Height = *flagHeight
		cfg.Render.FitTerminal = false
	}
	if *flagFPS > 0 {
		cfg.Render.FPS = *flagFPS
	}
	if *flagLogLevel != "" {
		cfg.Logging.Level = *flagLogLevel
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagFrames > 0 {
		cfg.Output.Frames = *flagFrames
	}
	if *flagOut != "" {
		cfg.Output.Dir = *flagOut
	}
	if *flagScale > 0 {
		cfg.Output.Scale = *flagScale
	}
}
