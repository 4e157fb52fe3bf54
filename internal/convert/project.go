// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	projectPrefix   = "latex_project_"
	timestampLayout = "20060102_150405"

	// MainFile is the LaTeX source inside a project.
	MainFile = "main.tex"

	// ReadmeFile describes the project layout.
	ReadmeFile = "README.txt"
)

// Readme is the fixed content of README.txt.
const Readme = `LaTeX Project Files
=================
1. main.tex: Main LaTeX file (compile this)
2. images/: Contains all extracted images

Instructions:
1. Keep all files in the same directory structure
2. Compile main.tex with your LaTeX compiler
`

// ProjectName returns "latex_project_YYYYMMDD_HHMMSS" for t in local time.
func ProjectName(t time.Time) string {
	return projectPrefix + t.Local().Format(timestampLayout)
}

// maxNameAttempts bounds the numeric suffixes tried for a project name.
const maxNameAttempts = 100

// createProjectDir makes <parent>/<name>. When a project directory or
// archive with that name already exists, a numeric suffix is added.
func createProjectDir(parent, name string) (string, error) {
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	for i := 1; i <= maxNameAttempts; i++ {
		candidate := name
		if i > 1 {
			candidate = name + "_" + strconv.Itoa(i)
		}
		dir := filepath.Join(parent, candidate)
		if _, err := os.Stat(dir + ".zip"); err == nil {
			continue
		}
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return dir, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("creating project directory: %w", err)
		}
	}
	return "", fmt.Errorf("creating project directory: %s and %d variants already exist", name, maxNameAttempts-1)
}

// zipProject writes every file and directory under dir into a deflated
// archive at dest, with paths relative to dir.
func zipProject(dir, dest string) (err error) {
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating archive: %w", err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing archive: %w", cerr)
		}
		if err != nil {
			os.Remove(dest)
		}
	}()

	zw := zip.NewWriter(out)
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		name := filepath.ToSlash(rel)

		if d.IsDir() {
			_, err := zw.Create(name + "/")
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		hdr.Name = name
		hdr.Method = zip.Deflate

		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
	if walkErr != nil {
		zw.Close()
		return fmt.Errorf("archiving %s: %w", dir, walkErr)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finishing archive: %w", err)
	}
	return nil
}
