// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package rtl_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/db47h/rtl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSimConfig(t *testing.T) {
	// GIVEN a config that only sets the iteration budget
	path := writeFile(t, "sim.yaml", "max_iterations: 16\n")

	// WHEN it is loaded
	cfg, err := rtl.LoadSimConfig(path)

	// THEN unset fields keep their defaults
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.MaxIterations)
	assert.Equal(t, rtl.DefaultSimConfig().StepTime, cfg.StepTime)
}

func TestLoadSimConfig_invalid(t *testing.T) {
	_, err := rtl.LoadSimConfig(writeFile(t, "sim.yaml", "max_iterations: 0\n"))
	assert.Error(t, err)

	_, err = rtl.LoadSimConfig(writeFile(t, "sim.yaml", "max_iterations: [\n"))
	assert.Error(t, err)

	_, err = rtl.LoadSimConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewSimulation_badConfig(t *testing.T) {
	m := counter(t, "cnt", 2)
	_, err := rtl.NewSimulation(m, rtl.WithConfig(rtl.SimConfig{MaxIterations: 4}))
	assert.Error(t, err, "zero step time must be rejected")
}
