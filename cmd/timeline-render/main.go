// Command timeline-render draws a timeline document to SVG, PNG or a JSON
// display list without running the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	service "github.com/okian/timeline/internal/app"
	"github.com/okian/timeline/internal/config"
	"github.com/okian/timeline/internal/domain/document"
	"github.com/okian/timeline/pkg/logger"
)

type options struct {
	in        string
	out       string
	format    string
	docFormat string
	width     int
	height    int
}

func main() {
	var o options
	flag.StringVar(&o.in, "in", "-", "Timeline document to read, - for stdin")
	flag.StringVar(&o.out, "out", "-", "File to write, - for stdout")
	flag.StringVar(&o.format, "format", "svg", "Output format: svg, png or json")
	flag.StringVar(&o.docFormat, "doc-format", "", "Input format: json or yaml (default from the file extension)")
	flag.IntVar(&o.width, "width", 0, "Canvas width, 0 fits the year range")
	flag.IntVar(&o.height, "height", 0, "Canvas height, 0 uses the configured height")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	// Keep stdout clean for the image.
	_ = logger.SetLevelString("error")

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := run(ctx, cfg, o, os.Stdin, os.Stdout); err != nil {
		logger.Get().Error(ctx, "render failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, o options, stdin io.Reader, stdout io.Writer) error {
	format, err := service.ParseRenderFormat(o.format)
	if err != nil {
		return err
	}
	docFormat, err := inputFormat(o)
	if err != nil {
		return err
	}
	data, err := readInput(o.in, stdin)
	if err != nil {
		return err
	}

	svc := service.New(
		service.WithLogger(logger.Get().Named("render")),
		service.WithQueueSize(1),
		service.WithLayout(cfg.Layout()),
		service.WithCanvasSize(cfg.CanvasWidth, cfg.CanvasHeight),
		service.WithMaxYearSpan(cfg.MaxYearSpan),
	)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	if _, err := svc.Import(ctx, data, docFormat); err != nil {
		return fmt.Errorf("import %s: %w", o.in, err)
	}
	out, err := svc.Render(ctx, service.RenderRequest{Format: format, Width: o.width, Height: o.height})
	if err != nil {
		return err
	}

	if o.out == "" || o.out == "-" {
		_, err = stdout.Write(out.Body)
		return err
	}
	return os.WriteFile(o.out, out.Body, 0o644)
}

// inputFormat prefers the explicit flag, then the file extension.
func inputFormat(o options) (document.Format, error) {
	if o.docFormat != "" {
		return document.ParseFormat(o.docFormat)
	}
	switch strings.ToLower(filepath.Ext(o.in)) {
	case ".yaml", ".yml":
		return document.FormatYAML, nil
	default:
		return document.FormatJSON, nil
	}
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}
