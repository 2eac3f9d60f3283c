// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// useFixture points ASSETCTL_CFG at a testdata file and resets the global.
func useFixture(t *testing.T, name string) {
	t.Helper()

	absPath, err := filepath.Abs(filepath.Join("testdata", name))
	require.NoError(t, err)

	t.Setenv("ASSETCTL_CFG", absPath)
	Config = Type{}
	t.Cleanup(func() { Config = Type{} })
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		wantErr bool
		check   func(*testing.T, Type)
	}{
		{
			name: "flat",
			file: "simple.yaml",
			check: func(t *testing.T, cfg Type) {
				assert.NotEmpty(t, cfg.Source)
				assert.Equal(t, "https://skulls.example.com", cfg.Data["base_url"])
				assert.Equal(t, 2, cfg.Data["padding"])
			},
		},
		{
			name: "nested",
			file: "api.yaml",
			check: func(t *testing.T, cfg Type) {
				api, ok := cfg.Data["api"].(map[string]interface{})
				require.True(t, ok, "api should be a map")
				assert.Equal(t, "/api/secure-image", api["path"])
			},
		},
		{
			name: "mixed types",
			file: "mixed-types.yaml",
			check: func(t *testing.T, cfg Type) {
				assert.Equal(t, true, cfg.Data["enabled"])
				assert.Equal(t, 30.5, cfg.Data["timeout"])
				assert.Len(t, cfg.Data["variants"], 2)
			},
		},
		{
			name: "empty",
			file: "empty.yaml",
			check: func(t *testing.T, cfg Type) {
				assert.NotEmpty(t, cfg.Source)
				assert.Empty(t, cfg.Data)
			},
		},
		{
			name:    "malformed",
			file:    "bad.yaml",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useFixture(t, tt.file)

			cfg, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	t.Setenv("ASSETCTL_CFG", "/nonexistent/assetctl.yaml")
	Config = Type{}

	cfg, err := Load(filepath.Join("testdata", "simple.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "https://skulls.example.com", cfg.Data["base_url"])
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Setenv("ASSETCTL_CFG", "/nonexistent/path/assetctl.yaml")
	Config = Type{}

	_, err := Load()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_StandardLocations(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ASSETCTL_CFG", "")
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("APPDATA", "")
	t.Setenv("HOME", dir)
	Config = Type{}

	_, err := Load()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_CfgIsDirectory(t *testing.T) {
	t.Setenv("ASSETCTL_CFG", "testdata")
	Config = Type{}

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "points to a directory")
}

func TestGetString(t *testing.T) {
	useFixture(t, "api.yaml")

	got, err := GetString("api.base_url")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", got)

	got, err = GetString("api.missing", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", got)

	_, err = GetString("api.missing")
	assert.Error(t, err)

	_, err = GetString("api.retries")
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestGetInt(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		def     []int
		want    int
		wantErr bool
	}{
		{name: "int", key: "cache.capacity", want: 64},
		{name: "float truncated", key: "api.rate", want: 2},
		{name: "default", key: "cache.missing", def: []int{256}, want: 256},
		{name: "missing", key: "cache.missing", wantErr: true},
		{name: "wrong type", key: "api.path", wantErr: true},
	}

	useFixture(t, "api.yaml")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GetInt(tt.key, tt.def...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetDuration(t *testing.T) {
	useFixture(t, "api.yaml")

	d, err := GetDuration("api.timeout")
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, d)

	d, err = GetDuration("cache.denial_ttl")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	d, err = GetDuration("serve.grace", 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)

	_, err = GetDuration("api.path")
	assert.Error(t, err)
}

func TestGetStringSlice(t *testing.T) {
	useFixture(t, "namespace.yaml")

	got, err := GetStringSlice("fetch.defaults")
	require.NoError(t, err)
	assert.Equal(t, []string{"--collection", "toxic-skulls-club"}, got)

	got, err = GetStringSlice("preload.nightly")
	require.NoError(t, err)
	assert.Equal(t, []string{"--variant glb"}, got)

	_, err = GetStringSlice("serve.defaults")
	assert.Error(t, err)
}

func TestGetStringMap(t *testing.T) {
	useFixture(t, "collections.yaml")

	m, err := GetStringMap("collections")
	require.NoError(t, err)
	assert.Len(t, m, 2)
	assert.Contains(t, m, "test-drop")

	_, err = GetStringMap("collections.test-drop.name")
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestNamespace(t *testing.T) {
	useFixture(t, "namespace.yaml")
	_, err := Load()
	require.NoError(t, err)

	Config.Namespace = "fetch"
	got, err := GetString("wallet")
	require.NoError(t, err)
	assert.Equal(t, "0xfetch", got)

	got, err = GetString("output")
	require.NoError(t, err)
	assert.Equal(t, "text", got, "falls back to the global key")

	Config.Namespace = "preload"
	got, err = GetString("output")
	require.NoError(t, err)
	assert.Equal(t, "json", got)
}

func TestLazyLoad(t *testing.T) {
	useFixture(t, "simple.yaml")

	got, err := GetString("base_url")
	require.NoError(t, err)
	assert.Equal(t, "https://skulls.example.com", got)
	assert.NotEmpty(t, Config.Source)
}

func TestGetFloatAndBool(t *testing.T) {
	useFixture(t, "mixed-types.yaml")

	f, err := GetFloat("timeout")
	require.NoError(t, err)
	assert.Equal(t, 30.5, f)

	f, err = GetFloat("version")
	require.NoError(t, err)
	assert.Equal(t, 1.0, f)

	b, err := GetBool("enabled")
	require.NoError(t, err)
	assert.True(t, b)

	b, err = GetBool("missing", true)
	require.NoError(t, err)
	assert.True(t, b)

	_, err = GetBool("name")
	assert.ErrorIs(t, err, ErrWrongType)
}
