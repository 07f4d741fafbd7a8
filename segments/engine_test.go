// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package segments

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig("")
	require.NoError(t, err)
	assert.Equal(t, Config{Parallelism: runtime.NumCPU(), FastPath: true, MinChunk: DefaultMinChunk}, cfg)

	cfg, err = ParseConfig("parallelism=3, nofastpath ,minchunk=7")
	require.NoError(t, err)
	assert.Equal(t, Config{Parallelism: 3, FastPath: false, MinChunk: 7}, cfg)

	cfg, err = ParseConfig("nofastpath,fastpath,parallelism=-1")
	require.NoError(t, err)
	assert.Equal(t, Config{Parallelism: -1, FastPath: true, MinChunk: DefaultMinChunk}, cfg)

	// Round trip through String.
	cfg2, err := ParseConfig(cfg.String())
	require.NoError(t, err)
	assert.Equal(t, cfg, cfg2)

	for _, invalid := range []string{
		"parallelism", "parallelism=x", "parallelism=-2", "minchunk=0", "nofastpath=1", "turbo", "parallelism=2,turbo=3",
	} {
		_, err = ParseConfig(invalid)
		require.Errorf(t, err, "ParseConfig(%q) should have failed", invalid)
		t.Logf("\tParseConfig(%q): %v", invalid, err)
	}
}

func TestNew(t *testing.T) {
	e, err := New("parallelism=0")
	require.NoError(t, err)
	assert.Equal(t, 0, e.Config().Parallelism)
	assert.False(t, e.workers.IsEnabled())
	assert.Contains(t, e.String(), "parallelism=0")

	_, err = New("parallelism=foo")
	require.Error(t, err)

	assert.Same(t, Default(), Default())
}
