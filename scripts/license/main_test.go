// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommentHeader_PrefixesLines(t *testing.T) {
	require.Equal(t, "// a\n//\n// b\n", commentHeader("a\n\nb\n", "//"))
	require.Equal(t, "# a\n", commentHeader("a", "#"))
}

func TestRun_AddsMissingHeaders(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	header := commentHeader(licenseText, "//")

	missing := filepath.Join(dir, "missing.go")
	require.NoError(os.WriteFile(missing, []byte("package x\n"), 0o600))
	outdated := filepath.Join(dir, "outdated.go")
	require.NoError(os.WriteFile(outdated, []byte("// Copyright (c) 2024 Sonic Operations Ltd\n// old\n\npackage x\n"), 0o600))
	present := filepath.Join(dir, "present.go")
	require.NoError(os.WriteFile(present, []byte(header+"\npackage x\n"), 0o600))
	ignored := filepath.Join(dir, "notes.txt")
	require.NoError(os.WriteFile(ignored, []byte("text\n"), 0o600))

	require.Error(newApp().Run([]string{"license", "--dir", dir, "--check"}))
	require.NoError(newApp().Run([]string{"license", "--dir", dir}))
	require.NoError(newApp().Run([]string{"license", "--dir", dir, "--check"}))

	for _, file := range []string{missing, outdated, present} {
		content, err := os.ReadFile(file)
		require.NoError(err)
		require.Equal(header+"\npackage x\n", string(content), file)
	}
	content, err := os.ReadFile(ignored)
	require.NoError(err)
	require.Equal("text\n", string(content))
}

func TestCollectFiles_SkipsExamples(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "_examples", "repo"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_examples", "repo", "a.go"), nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), nil, 0o600))
	files, err := collectFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "go.mod", files[0].pattern)
}
