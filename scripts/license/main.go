// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Adds or checks the license header of all Go sources of the module.
// Usage: go run ./scripts/license --dir . [--check]

package main

import (
	_ "embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

//go:embed license_header.txt
var licenseText string

var (
	dirFlag = cli.StringFlag{
		Name:     "dir",
		Usage:    "root directory of the files to process",
		Required: true,
	}
	checkFlag = cli.BoolFlag{
		Name:  "check",
		Usage: "only verify headers, do not modify files",
	}
)

// patterns maps file extensions, or full file names, to the comment prefix
// used for the header.
var patterns = map[string]string{
	".go":    "//",
	"go.mod": "//",
	".yml":   "#",
}

// skipped lists path fragments excluded from processing.
var skipped = []string{"/_examples/", "/build/", ".pb.go"}

func newApp() *cli.App {
	return &cli.App{
		Name:   "license",
		Usage:  "adds or checks license headers",
		Flags:  []cli.Flag{&dirFlag, &checkFlag},
		Action: run,
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(context *cli.Context) error {
	dir := context.String(dirFlag.Name)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("invalid target directory: %w", err)
	}
	files, err := collectFiles(dir)
	if err != nil {
		return err
	}
	check := context.Bool(checkFlag.Name)
	failures := 0
	for _, file := range files {
		header := commentHeader(licenseText, patterns[file.pattern])
		ok, err := hasHeader(file.path, header)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if check {
			log.Warn("Missing or incorrect license header", "file", file.path)
			failures++
			continue
		}
		if err := addHeader(file.path, header); err != nil {
			return err
		}
		log.Info("Added license header", "file", file.path)
	}
	if failures > 0 {
		return fmt.Errorf("%d files without correct license header", failures)
	}
	return nil
}

type source struct {
	path    string
	pattern string
}

func collectFiles(dir string) ([]source, error) {
	var res []source
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if entry.Name() == "_examples" {
				return filepath.SkipDir
			}
			return nil
		}
		for _, fragment := range skipped {
			if strings.Contains(path, fragment) {
				return nil
			}
		}
		for pattern := range patterns {
			if matchPattern(path, pattern) {
				res = append(res, source{path: path, pattern: pattern})
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dir, err)
	}
	return res, nil
}

func matchPattern(path, pattern string) bool {
	if pattern[0] == '.' {
		return strings.HasSuffix(path, pattern)
	}
	return filepath.Base(path) == pattern
}

// commentHeader turns the license text into a comment block using the given
// line prefix.
func commentHeader(text, prefix string) string {
	var sb strings.Builder
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if line == "" {
			sb.WriteString(prefix + "\n")
		} else {
			sb.WriteString(prefix + " " + line + "\n")
		}
	}
	return sb.String()
}

func hasHeader(path, header string) (bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	if strings.HasPrefix(string(content), "// Code generated") {
		return true, nil
	}
	return strings.HasPrefix(string(content), header), nil
}

// addHeader prepends the header, replacing an outdated header of the same
// copyright holder.
func addHeader(path, header string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	text := string(content)
	if strings.Contains(firstLine(text), "Sonic Operations Ltd") {
		if end := strings.Index(text, "\n\n"); end >= 0 {
			text = text[end+2:]
		}
	}
	return os.WriteFile(path, []byte(header+"\n"+text), info.Mode().Perm())
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	return line
}
