// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/staranto/assetctl/internal/config"
)

func sampleRows() []map[string]interface{} {
	return []map[string]interface{}{
		{"variant": "glb", "token": "7", "status": "ready", "size": "1.2 MiB"},
		{"variant": "toxic-transparent", "token": "42", "status": "denied"},
		{"variant": "pixel-art", "token": "42", "status": "unavailable"},
	}
}

var sampleCols = []Column{
	{Key: "variant"},
	{Key: "token", Title: "TOKEN ID"},
	{Key: "status"},
	{Key: "size"},
}

func noConfig(t *testing.T) {
	t.Helper()
	t.Setenv("ASSETCTL_CFG", "/nonexistent/assetctl.yaml")
	config.Config = config.Type{}
}

func TestSliceDiceSpit_Text(t *testing.T) {
	noConfig(t)

	var buf bytes.Buffer
	err := SliceDiceSpit(sampleRows(), sampleCols, Options{Format: "text", Titles: true}, &buf)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "VARIANT")
	assert.Contains(t, lines[0], "TOKEN ID")
	assert.Contains(t, lines[1], "1.2 MiB")
	assert.Contains(t, lines[2], "denied")
	assert.Contains(t, lines[2], "-", "missing cells render as -")
}

func TestSliceDiceSpit_TextEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SliceDiceSpit(nil, sampleCols, Options{}, &buf))
	assert.Empty(t, buf.String())
}

func TestSliceDiceSpit_JSON(t *testing.T) {
	var buf bytes.Buffer
	err := SliceDiceSpit(sampleRows(), sampleCols, Options{Format: "json", Filter: "status!=ready"}, &buf)
	require.NoError(t, err)

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "toxic-transparent", got[0]["variant"])

	buf.Reset()
	require.NoError(t, SliceDiceSpit(nil, sampleCols, Options{Format: "json"}, &buf))
	assert.Equal(t, "[]\n", buf.String())
}

func TestSliceDiceSpit_YAML(t *testing.T) {
	var buf bytes.Buffer
	err := SliceDiceSpit(sampleRows(), sampleCols, Options{Format: "yaml", Sort: "token,variant"}, &buf)
	require.NoError(t, err)

	var got []map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "pixel-art", got[0]["variant"])
	assert.Equal(t, "7", got[2]["token"])
}

func TestSliceDiceSpit_UnknownFormat(t *testing.T) {
	err := SliceDiceSpit(sampleRows(), sampleCols, Options{Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestSortRows(t *testing.T) {
	rows := sampleRows()
	SortRows(rows, "-variant")
	assert.Equal(t, "toxic-transparent", rows[0]["variant"])
	assert.Equal(t, "glb", rows[2]["variant"])

	rows = sampleRows()
	SortRows(rows, "")
	assert.Equal(t, "glb", rows[0]["variant"], "no spec leaves order alone")
}

func TestBuildFilters(t *testing.T) {
	filters := BuildFilters("status=ready,variant!^pre,token/^4")
	require.Len(t, filters, 3)
	assert.Equal(t, Filter{Key: "status", Operand: "=", Target: "ready"}, filters[0])
	assert.Equal(t, Filter{Key: "variant", Negate: true, Operand: "^", Target: "pre"}, filters[1])
	assert.Equal(t, Filter{Key: "token", Operand: "/", Target: "^4"}, filters[2])

	assert.Empty(t, BuildFilters(""))
	assert.Empty(t, BuildFilters("nooperand"))

	t.Setenv("ASSETCTL_FILTER_DELIM", ";")
	assert.Len(t, BuildFilters("status=ready;token=7"), 2)
}

func TestFilterRows(t *testing.T) {
	tests := []struct {
		spec string
		want int
	}{
		{"", 3},
		{"status=ready", 1},
		{"status!=ready", 2},
		{"status~DENIED", 1},
		{"variant@art", 1},
		{"variant^toxic,token=42", 1},
		{"token/^[0-9]$", 1},
		{"missing=x", 3},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			assert.Len(t, FilterRows(sampleRows(), tt.spec), tt.want)
		})
	}
}

type stringer struct{ s string }

func (v stringer) String() string { return v.s }

func TestInterfaceToString(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		emptyVal string
		want     string
	}{
		{name: "string", value: "hello", want: "hello"},
		{name: "int", value: 42, want: "42"},
		{name: "int64", value: int64(1 << 40), want: "1099511627776"},
		{name: "uint64 chain", value: uint64(33139), want: "33139"},
		{name: "float64", value: 42.5, want: "42.5"},
		{name: "bool true", value: true, want: "true"},
		{name: "bool false is zero value", value: false, want: ""},
		{name: "nil default", value: nil, want: ""},
		{name: "nil custom", value: nil, emptyVal: "-", want: "-"},
		{name: "stringer", value: stringer{"glb"}, want: "glb"},
		{name: "slice", value: []string{"a", "b"}, want: `["a","b"]`},
		{name: "map", value: map[string]int{"x": 1}, want: `{"x":1}`},
		{name: "zero with custom empty", value: 0, emptyVal: "N/A", want: "N/A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			if tt.emptyVal != "" {
				got = InterfaceToString(tt.value, tt.emptyVal)
			} else {
				got = InterfaceToString(tt.value)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDumpExamples(t *testing.T) {
	var buf bytes.Buffer
	DumpExamples(&buf, [][2]string{{"assetctl fetch 42", "fetch one asset"}})
	assert.Contains(t, buf.String(), "assetctl fetch 42")

	buf.Reset()
	DumpExamples(&buf, nil)
	assert.Empty(t, buf.String())
}

func TestGetColors(t *testing.T) {
	noConfig(t)

	header, even, odd := getColors("colors")
	assert.Equal(t, "#f6be00", header)
	assert.Equal(t, "#ffffff", even)
	assert.Equal(t, "#00c8f0", odd)
}
