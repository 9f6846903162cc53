// Package export renders a validated invoice aggregate into the three
// output artifacts: a printable PDF, a two-sheet spreadsheet workbook,
// and a fiscal XML document. Exporters borrow read access to the
// invoice and never perform their own arithmetic.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"invoice-engine/internal/core"
)

// RenderError reports a PDF layout or rasterization failure. A failed
// render never leaves a partial artifact behind.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed: %v", e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// SerializationError reports a workbook or XML encoding failure.
type SerializationError struct {
	Format string
	Err    error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("%s serialization failed: %v", e.Format, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// Renderer is implemented by all three exporters.
type Renderer interface {
	// Render writes the artifact for inv to w.
	Render(inv *core.Invoice, w io.Writer) error
	// Extension is the artifact file extension without the dot.
	Extension() string
	// ContentType is the MIME type for HTTP delivery.
	ContentType() string
}

// Filename returns the artifact naming convention for an issued
// invoice: invoice-<number>.<ext>.
func Filename(number, ext string) string {
	return fmt.Sprintf("invoice-%s.%s", number, ext)
}

// WriteArtifact renders into a temp file in the target directory and
// renames it into place only on success, so an export error leaves no
// partial file on disk.
func WriteArtifact(path string, render func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".invoice-*")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}

	if err := render(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to finalize artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to move artifact into place: %w", err)
	}
	return nil
}
