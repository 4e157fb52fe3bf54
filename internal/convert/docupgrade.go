// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/doc2latex/internal/container"
)

// Upgrader turns a legacy binary .doc file into an equivalent .docx.
type Upgrader interface {
	// Upgrade writes a .docx for docPath into dir and returns its path.
	Upgrade(ctx context.Context, docPath, dir string) (string, error)
}

// DocUpgrader pipes .doc files through a container image that reads a .doc
// on stdin and writes a .docx on stdout.
type DocUpgrader struct {
	runtime container.Runtime
	image   string
}

// NewDocUpgrader returns an upgrader running image on rt. It verifies the
// image exists locally before returning.
func NewDocUpgrader(ctx context.Context, rt container.Runtime, image string) (*DocUpgrader, error) {
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("upgrade image not available in %s: %w", rt.Name(), err)
	}
	return &DocUpgrader{runtime: rt, image: image}, nil
}

// Upgrade converts docPath and writes <dir>/<base>.docx.
func (u *DocUpgrader) Upgrade(ctx context.Context, docPath, dir string) (string, error) {
	in, err := os.Open(docPath)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", docPath, err)
	}
	defer in.Close()

	base := strings.TrimSuffix(filepath.Base(docPath), filepath.Ext(docPath))
	outPath := filepath.Join(dir, base+".docx")
	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", outPath, err)
	}

	runErr := u.runtime.Run(ctx, u.image, in, out)
	closeErr := out.Close()
	if runErr != nil {
		return "", fmt.Errorf("upgrading %s: %w", docPath, runErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("writing %s: %w", outPath, closeErr)
	}

	if info, err := os.Stat(outPath); err != nil || info.Size() == 0 {
		return "", fmt.Errorf("upgrade of %s produced no output", docPath)
	}
	return outPath, nil
}
