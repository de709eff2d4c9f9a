// Package config handles threed configuration loading and management.
package config

import (
	"github.com/Faultbox/threed/internal/latex"
	"github.com/Faultbox/threed/internal/plot"
	"github.com/Faultbox/threed/pkg/geom"
)

// Config holds all threed settings.
type Config struct {
	Output  OutputConfig  `yaml:"output" toml:"output"`
	Scatter ScatterConfig `yaml:"scatter" toml:"scatter"`
	Density DensityConfig `yaml:"density" toml:"density"`
	Arrow   ArrowConfig   `yaml:"arrow" toml:"arrow"`
	Latex   LatexConfig   `yaml:"latex" toml:"latex"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// OutputConfig controls where and how scenes are written.
type OutputConfig struct {
	Dir       string `yaml:"dir" toml:"dir"`
	Prefix    string `yaml:"prefix" toml:"prefix"`
	RotateZUp bool   `yaml:"rotate_zup" toml:"rotate_zup"` // rotate nodes so +Z is up
	GLB       bool   `yaml:"glb" toml:"glb"`               // also write <prefix>.glb
}

// ScatterConfig holds the sphere settings of scatter plots.
type ScatterConfig struct {
	Radius       float64 `yaml:"radius" toml:"radius"`
	Subdivisions int     `yaml:"subdivisions" toml:"subdivisions"`
	Metal        float64 `yaml:"metal" toml:"metal"`
	Roughness    float64 `yaml:"roughness" toml:"roughness"`
}

// DensityConfig holds density plot settings.
type DensityConfig struct {
	Colormap string `yaml:"colormap" toml:"colormap"`
}

// ArrowConfig holds arrow proportions.
type ArrowConfig struct {
	Radius       float64 `yaml:"radius" toml:"radius"` // 0 means length/80
	TailFraction float64 `yaml:"tail_fraction" toml:"tail_fraction"`
	Segments     int     `yaml:"segments" toml:"segments"`
	HeadWidth    float64 `yaml:"head_width" toml:"head_width"`
}

// LatexConfig holds the external LaTeX toolchain commands.
type LatexConfig struct {
	LatexCommand  string   `yaml:"latex_command" toml:"latex_command"`
	DvipngCommand string   `yaml:"dvipng_command" toml:"dvipng_command"`
	Packages      []string `yaml:"packages" toml:"packages"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	scatter := plot.DefaultScatterOptions()
	arrow := geom.DefaultArrowOptions()
	return &Config{
		Output: OutputConfig{
			Dir:       ".",
			Prefix:    "scene",
			RotateZUp: false,
			GLB:       false,
		},
		Scatter: ScatterConfig{
			Radius:       scatter.Radius,
			Subdivisions: scatter.Subdivisions,
			Metal:        scatter.Metal,
			Roughness:    scatter.Roughness,
		},
		Density: DensityConfig{
			Colormap: "ColdHot",
		},
		Arrow: ArrowConfig{
			Radius:       arrow.Radius,
			TailFraction: arrow.TailFraction,
			Segments:     arrow.Segments,
			HeadWidth:    arrow.HeadWidth,
		},
		Latex: LatexConfig{
			LatexCommand:  latex.DefaultLatexCommand,
			DvipngCommand: latex.DefaultDvipngCommand,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// ScatterOptions converts the scatter section for the plotter.
func (c *Config) ScatterOptions() plot.ScatterOptions {
	return plot.ScatterOptions{
		Radius:       c.Scatter.Radius,
		Subdivisions: c.Scatter.Subdivisions,
		Metal:        c.Scatter.Metal,
		Roughness:    c.Scatter.Roughness,
	}
}

// ArrowOptions converts the arrow section for the geometry generators.
func (c *Config) ArrowOptions() geom.ArrowOptions {
	return geom.ArrowOptions{
		Radius:       c.Arrow.Radius,
		TailFraction: c.Arrow.TailFraction,
		Segments:     c.Arrow.Segments,
		HeadWidth:    c.Arrow.HeadWidth,
	}
}

// Renderer builds a LaTeX renderer from the latex section.
func (c *Config) Renderer() *latex.Renderer {
	r := latex.NewRenderer()
	if c.Latex.LatexCommand != "" {
		r.LatexCommand = c.Latex.LatexCommand
	}
	if c.Latex.DvipngCommand != "" {
		r.DvipngCommand = c.Latex.DvipngCommand
	}
	r.Packages = append(r.Packages, c.Latex.Packages...)
	return r
}
