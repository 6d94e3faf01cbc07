// Package container reads and rewrites the zipped OOXML template container.
// Only the main document part is ever replaced; every other entry passes
// through with its compressed bytes untouched.
package container

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
)

// documentPart is the entry holding the document body markup.
const documentPart = "word/document.xml"

// Document is an opened template container.
type Document struct {
	zr   *zip.Reader
	body []byte
}

// Open reads a template container from disk.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", path, err)
	}
	d, err := OpenBytes(data)
	if err != nil {
		return nil, fmt.Errorf("open template %s: %w", path, err)
	}
	return d, nil
}

// OpenBytes reads a template container from memory.
func OpenBytes(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open container: %w", err)
	}

	d := &Document{zr: zr}
	for _, f := range zr.File {
		if f.Name != documentPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", documentPart, err)
		}
		d.body, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", documentPart, err)
		}
		return d, nil
	}
	return nil, fmt.Errorf("%s not found in container", documentPart)
}

// Body returns the raw markup of the main document part.
func (d *Document) Body() []byte { return d.body }

// WriteTo writes a copy of the container with the main document part replaced
// by newBody. Entry order is preserved and unrelated entries are copied raw.
func (d *Document) WriteTo(w io.Writer, newBody []byte) error {
	zw := zip.NewWriter(w)
	for _, f := range d.zr.File {
		if f.Name == documentPart {
			ew, err := zw.CreateHeader(&zip.FileHeader{
				Name:     f.Name,
				Method:   zip.Deflate,
				Modified: f.Modified,
			})
			if err != nil {
				return fmt.Errorf("create %s: %w", f.Name, err)
			}
			if _, err := ew.Write(newBody); err != nil {
				return fmt.Errorf("write %s: %w", f.Name, err)
			}
			continue
		}
		if err := zw.Copy(f); err != nil {
			return fmt.Errorf("copy %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize container: %w", err)
	}
	return nil
}

// Save writes the rewritten container to disk.
func (d *Document) Save(path string, newBody []byte) error {
	var buf bytes.Buffer
	if err := d.WriteTo(&buf, newBody); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}
