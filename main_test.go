// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/assetctl/internal/config"
)

func TestMangleArguments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assetctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
fetch:
  defaults:
    - --collection skulls-on-ape
  mine:
    - --wallet 0xaa
    - --variant glb
preload:
  nightly: --output json
`), 0o600))
	t.Setenv("ASSETCTL_CFG", path)
	config.Config = config.Type{}
	t.Cleanup(func() { config.Config = config.Type{} })

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "defaults set",
			args: []string{"assetctl", "fetch", "42"},
			want: []string{"assetctl", "fetch", "--collection", "skulls-on-ape", "42"},
		},
		{
			name: "named set replaces defaults",
			args: []string{"assetctl", "fetch", "@mine", "--out", "x.glb", "42"},
			want: []string{"assetctl", "fetch", "--wallet", "0xaa", "--variant", "glb", "--out", "x.glb", "42"},
		},
		{
			name: "scalar set",
			args: []string{"assetctl", "preload", "@nightly", "1", "2"},
			want: []string{"assetctl", "preload", "--output", "json", "1", "2"},
		},
		{
			name: "unknown set adds nothing",
			args: []string{"assetctl", "serve", "@nope"},
			want: []string{"assetctl", "serve"},
		},
		{
			name: "help",
			args: []string{"assetctl", "fetch", "42", "-h"},
			want: []string{"assetctl", "fetch", "--help"},
		},
		{
			name: "root flag",
			args: []string{"assetctl", "--version"},
			want: []string{"assetctl", "--version"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mangleArguments(tt.args))
		})
	}
}
