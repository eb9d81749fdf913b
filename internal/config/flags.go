package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagAdaptiveEps = flag.Bool("adaptive-eps", false, "Scale the ray epsilon with the mesh edge length")
	flagEps         = flag.Float64("eps", 0, "Fixed ray-triangle epsilon")
	flagWidth       = flag.Int("width", 0, "Depth map width")
	flagHeight      = flag.Int("height", 0, "Depth map height")
	flagSupersample = flag.Int("supersample", 0, "Depth map supersampling factor")
	flagView        = flag.String("view", "", "Depth map view axis (+x, -x, +y, -y, +z, -z)")
	flagOut         = flag.String("out", "", "Depth map output file (.webp, .png or .bmp)")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments left after ParseFlags.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagAdaptiveEps {
		cfg.Index.AdaptiveEpsilon = true
	}
	if *flagEps > 0 {
		cfg.Index.Epsilon = *flagEps
	}
	if *flagWidth > 0 {
		cfg.Depthmap.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Depthmap.Height = *flagHeight
	}
	if *flagSupersample > 0 {
		cfg.Depthmap.Supersample = *flagSupersample
	}
	if *flagView != "" {
		cfg.Depthmap.View = *flagView
	}
	if *flagOut != "" {
		cfg.Depthmap.Output = *flagOut
	}
}
