package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/agenthands/dupscan/internal/core/model"
)

// createFile is replaced in tests.
var createFile = func(path string) (io.WriteCloser, error) { return os.Create(path) }

// JSONWriter encodes the report as indented JSON to W, or to Path when W is
// nil.
type JSONWriter struct {
	Path string
	W    io.Writer
}

func (w *JSONWriter) Write(ctx context.Context, r *model.Report) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	out := w.W
	if out == nil {
		f, ferr := createFile(w.Path)
		if ferr != nil {
			return fmt.Errorf("failed to create report file '%s': %w", w.Path, ferr)
		}
		defer func() {
			if cerr := f.Close(); err == nil && cerr != nil {
				err = fmt.Errorf("failed to close report file '%s': %w", w.Path, cerr)
			}
		}()
		out = f
	}

	return encode(out, r)
}

func encode(out io.Writer, r *model.Report) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
