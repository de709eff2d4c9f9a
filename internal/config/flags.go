package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file (.yaml or .toml)")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagOut    = flag.String("out", "", "Output directory")
	flagPrefix = flag.String("prefix", "", "Output file prefix")
	flagZUp    = flag.Bool("zup", false, "Rotate the scene so +Z points up")
	flagGLB    = flag.Bool("glb", false, "Also write a binary .glb")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the arguments left after the global flags.
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
	if *flagOut != "" {
		cfg.Output.Dir = *flagOut
	}
	if *flagPrefix != "" {
		cfg.Output.Prefix = *flagPrefix
	}
	if *flagZUp {
		cfg.Output.RotateZUp = true
	}
	if *flagGLB {
		cfg.Output.GLB = true
	}
}
