// Package output writes throughput samples to their destination.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
)

// Stdout is the destination name for standard output.
const Stdout = "-"

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// Open returns the destination for path. "-" is standard output, which is
// never closed; anything else is created or truncated on fs.
func Open(fs afero.Fs, path string) (io.WriteCloser, error) {
	if path == "" || path == Stdout {
		return nopCloser{os.Stdout}, nil
	}
	f, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot open output file: %w", err)
	}
	return f, nil
}
