// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "# assetctl fetch\n\n## Synopsis\n\nFetch one asset\nfor a wallet.\n\nMore text.\n\n## Examples\n\n```sh\n# Save a model\nassetctl fetch   --variant glb <TOKEN_ID>\n\nassetctl fetch 1\n```\n"

func TestParsePage(t *testing.T) {
	p := parsePage(sample)
	assert.Equal(t, "assetctl fetch", p.Title)
	assert.Equal(t, "Fetch one asset for a wallet.", p.Synopsis)
	assert.Equal(t, []example{
		{Desc: "Save a model", Cmd: "assetctl fetch --variant glb <TOKEN_ID>"},
		{Desc: "Example", Cmd: "assetctl fetch 1"},
	}, p.Examples)
}

func TestTLDR(t *testing.T) {
	got := parsePage(sample).tldr("fetch")
	assert.Contains(t, got, "# assetctl fetch\n")
	assert.Contains(t, got, "> Fetch one asset for a wallet.\n")
	assert.Contains(t, got, "`assetctl fetch --variant glb {{TOKEN_ID}}`")

	fallback := page{}.tldr("serve")
	assert.Contains(t, fallback, "`assetctl serve --help`")
}

func TestGenerate(t *testing.T) {
	root := t.TempDir()
	cmds := filepath.Join(root, "docs", "commands")
	require.NoError(t, os.MkdirAll(cmds, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cmds, "fetch.md"), []byte(sample), 0o600))

	n, err := generate(root, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.FileExists(t, filepath.Join(root, "docs", "man", "share", "man1", "assetctl-fetch.1"))
	assert.FileExists(t, filepath.Join(root, "docs", "tldr", "assetctl-fetch.md"))

	_, err = generate(t.TempDir(), true)
	assert.Error(t, err)
}
