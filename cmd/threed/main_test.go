package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/threed/internal/config"
	"github.com/Faultbox/threed/pkg/formats"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Output.Dir = t.TempDir()
	cfg.Output.Prefix = "out"
	return cfg
}

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestArrowsShareOneFrame(t *testing.T) {
	cfg := testConfig(t)
	in := writeInput(t, "arrows.csv", "0,0,0,1,1,1\n0,0,0,10,10,10\n")

	require.NoError(t, cmdArrows(context.Background(), cfg, []string{in}))

	sum, err := formats.Inspect(filepath.Join(cfg.Output.Dir, "out.gltf"))
	require.NoError(t, err)
	require.Len(t, sum.Primitives, 2)
	for _, p := range sum.Primitives {
		for c := 0; c < 3; c++ {
			assert.LessOrEqual(t, p.Max[c], float32(1.05), "%s max %v", p.Mesh, p.Max)
			assert.GreaterOrEqual(t, p.Min[c], float32(-0.05), "%s min %v", p.Mesh, p.Min)
		}
	}
	// The long arrow reaches the far corner of the unit cube.
	assert.InDelta(t, 1, sum.Primitives[1].Max[0], 0.01)
	assert.InDelta(t, 0.1, sum.Primitives[0].Max[0], 0.01)
}

func TestScatterCommand(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scatter.Subdivisions = 1
	in := writeInput(t, "points.csv", "x,y,z,color\n0,0,0,#ff0000\n1,2,3,#0000ff\n")

	require.NoError(t, cmdScatter(context.Background(), cfg, []string{in}))

	sum, err := formats.Inspect(filepath.Join(cfg.Output.Dir, "out.gltf"))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Nodes)
	assert.Equal(t, 2, sum.Materials)
	assert.Len(t, sum.Primitives, 2)
}

func TestDensityCommand(t *testing.T) {
	cfg := testConfig(t)
	in := writeInput(t, "grid.csv", ",0,1\n0,0,1\n1,1,2\n")

	require.NoError(t, cmdDensity(context.Background(), cfg, []string{"-cmap", "none", in}))

	sum, err := formats.Inspect(filepath.Join(cfg.Output.Dir, "out.gltf"))
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Triangles)
}

func TestCommandsNeedInput(t *testing.T) {
	cfg := testConfig(t)
	assert.Error(t, cmdArrows(context.Background(), cfg, nil))
	assert.Error(t, cmdInspect(nil))
	assert.Error(t, cmdGLB([]string{"only-one"}))
}
