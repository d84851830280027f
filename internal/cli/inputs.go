package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	orgerrors "github.com/matzehuels/orgtree/pkg/errors"
)

// stdinName is the input argument that reads from standard input.
const stdinName = "-"

// forEachInput calls fn for every input in order. Without keepGoing the
// first failure aborts. With keepGoing failures are reported and skipped,
// and the joined errors are returned at the end.
func forEachInput(ctx context.Context, inputs []string, keepGoing bool, fn func(ctx context.Context, input string) error) error {
	logger := loggerFromContext(ctx)
	var errs []error
	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := fn(ctx, input)
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) || !keepGoing {
			return fmt.Errorf("%s: %w", input, err)
		}
		logger.Error("skipping input", "input", input, "err", err)
		printError("%s: %s", input, orgerrors.UserMessage(err))
		errs = append(errs, fmt.Errorf("%s: %w", input, err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d inputs failed: %w", len(errs), len(inputs), errors.Join(errs...))
	}
	return nil
}

// readInput returns the contents of path, or of stdin for "-".
func readInput(path string) ([]byte, error) {
	if path == stdinName {
		return io.ReadAll(os.Stdin)
	}
	if err := orgerrors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, orgerrors.Wrap(orgerrors.ErrCodeFileNotFound, err, "input %s", path)
	}
	return data, err
}

// documentName names an input in logs, titles and output files.
func documentName(path string) string {
	if path == stdinName {
		return "stdin"
	}
	return filepath.Base(path)
}

// sidecarPath derives "<dir>/<stem><suffix>" for an input, e.g.
// notes.org → notes.graph.json.
func sidecarPath(input, suffix string) string {
	if input == stdinName {
		return "stdin" + suffix
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

// checkSingleOutput rejects an explicit output file for several inputs.
func checkSingleOutput(output string, inputs []string) error {
	if output != "" && len(inputs) > 1 {
		return orgerrors.New(orgerrors.ErrCodeInvalidInput, "--output needs exactly one input, got %d", len(inputs))
	}
	return nil
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns stdout for "-" and creates the file otherwise.
func openOutput(path string) (io.WriteCloser, error) {
	if path == stdinName {
		return nopCloser{os.Stdout}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.Create(path)
}

// writeOutput writes data to path, or stdout for "-".
func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
