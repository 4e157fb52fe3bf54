// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docx reads WordprocessingML (.docx) packages into document blocks:
// body paragraphs with their alignment, font size and inline images, then
// body tables.
package docx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"
)

// Package part names.
const (
	documentPart      = "word/document.xml"
	relationshipsPart = "word/_rels/document.xml.rels"
)

// maxPartSize bounds how much of a single part is read into memory.
const maxPartSize = 256 << 20

// Relationship is one entry of the document relationships part.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// IsImage reports whether the relationship points at an image part.
func (r Relationship) IsImage() bool {
	return strings.Contains(r.Type, "image")
}

// IsExternal reports whether the target lives outside the package.
func (r Relationship) IsExternal() bool {
	return r.TargetMode == "External"
}

// PartName resolves the target to a part name inside the package. Targets
// are relative to word/ unless they start with a slash.
func (r Relationship) PartName() string {
	if strings.HasPrefix(r.Target, "/") {
		return strings.TrimPrefix(r.Target, "/")
	}
	return path.Clean(path.Join("word", r.Target))
}

// Extension returns the file extension of the target, without the dot.
func (r Relationship) Extension() string {
	ext := path.Ext(r.Target)
	return strings.TrimPrefix(ext, ".")
}

type relationships struct {
	XMLName       xml.Name       `xml:"Relationships"`
	Relationships []Relationship `xml:"Relationship"`
}

// Package is an opened .docx archive.
type Package struct {
	zr    *zip.ReadCloser
	files map[string]*zip.File
}

// OpenPackage opens the .docx at path and checks it carries a main
// document part.
func OpenPackage(name string) (*Package, error) {
	zr, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("opening ZIP archive: %w", err)
	}
	p := &Package{zr: zr, files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		p.files[f.Name] = f
	}
	if _, ok := p.files[documentPart]; !ok {
		zr.Close()
		return nil, fmt.Errorf("not a valid DOCX file: missing %s", documentPart)
	}
	return p, nil
}

// Close releases the archive.
func (p *Package) Close() error {
	return p.zr.Close()
}

// Open returns a reader for the named part.
func (p *Package) Open(name string) (io.ReadCloser, error) {
	f, ok := p.files[name]
	if !ok {
		return nil, fmt.Errorf("part not found: %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	return rc, nil
}

// ReadPart reads the named part fully.
func (p *Package) ReadPart(name string) ([]byte, error) {
	rc, err := p.Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxPartSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if len(data) > maxPartSize {
		return nil, fmt.Errorf("part %s exceeds %d bytes", name, maxPartSize)
	}
	return data, nil
}

// Relationships returns the document relationships in file order. A package
// without a relationships part has none.
func (p *Package) Relationships() ([]Relationship, error) {
	if _, ok := p.files[relationshipsPart]; !ok {
		return nil, nil
	}
	rc, err := p.Open(relationshipsPart)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var rels relationships
	if err := xml.NewDecoder(rc).Decode(&rels); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", relationshipsPart, err)
	}
	return rels.Relationships, nil
}
