package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// PageRenderer renders the first page of a PDF as a JPEG image.
type PageRenderer interface {
	RenderFirstPage(ctx context.Context, pdf []byte) ([]byte, error)
}

// CommandRunner runs an external command and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Thumbnail width and height upper bound, in pixels.
const thumbnailSize = "200"

// CommandRenderer renders pages with the poppler pdftoppm tool.
type CommandRenderer struct {
	runner CommandRunner
}

// NewCommandRenderer returns a renderer that invokes pdftoppm through
// runner. A nil runner executes the command on the host.
func NewCommandRenderer(runner CommandRunner) *CommandRenderer {
	if runner == nil {
		runner = execRunner{}
	}

	return &CommandRenderer{runner: runner}
}

// RenderFirstPage implements PageRenderer.
func (r *CommandRenderer) RenderFirstPage(ctx context.Context, pdf []byte) ([]byte, error) {
	f, err := os.CreateTemp("", "coursesearch-*.pdf")
	if err != nil {
		return nil, err
	}
	defer func() { _ = os.Remove(f.Name()) }()

	if _, err = f.Write(pdf); err != nil {
		_ = f.Close()
		return nil, err
	}

	if err = f.Close(); err != nil {
		return nil, err
	}

	// Without an output root pdftoppm writes the image to stdout.
	out, err := r.runner.Run(ctx, "pdftoppm",
		"-jpeg", "-f", "1", "-l", "1", "-singlefile", "-scale-to", thumbnailSize, f.Name(),
	)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %w", err)
	}

	if len(out) == 0 {
		return nil, errors.New("pdftoppm: empty output")
	}

	return out, nil
}
