//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Convert groups targets that exercise the converter on local files.
type Convert mg.Namespace

// Dir converts every PDF and Word file directly inside dir.
func (Convert) Dir(dir string) error {
	mg.Deps(Build)

	var files []string
	for _, pattern := range []string{"*.pdf", "*.docx", "*.doc"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return err
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "no documents in %s\n", dir)
		return nil
	}
	args := append([]string{"convert"}, files...)
	return sh.RunV(filepath.Join(binDir, binName), args...)
}

// History prints the most recent conversions.
func (Convert) History() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "history", "list")
}
