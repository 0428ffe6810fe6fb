package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/timeline/internal/adapters/surface/display"
	"github.com/okian/timeline/internal/adapters/surface/raster"
	"github.com/okian/timeline/internal/adapters/surface/svg"
	"github.com/okian/timeline/internal/domain/model"
	"github.com/okian/timeline/internal/domain/render"
	"github.com/okian/timeline/pkg/logger"
	"github.com/okian/timeline/pkg/metrics"
)

// RenderFormat selects the surface a render is drawn on.
type RenderFormat string

const (
	RenderSVG  RenderFormat = "svg"
	RenderPNG  RenderFormat = "png"
	RenderJSON RenderFormat = "json"
)

// ParseRenderFormat maps a format name to a RenderFormat. Empty means SVG.
func ParseRenderFormat(s string) (RenderFormat, error) {
	switch f := RenderFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return RenderSVG, nil
	case RenderSVG, RenderPNG, RenderJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrRenderFormat, s)
	}
}

// ContentType returns the MIME type of the encoded output.
func (f RenderFormat) ContentType() string {
	switch f {
	case RenderPNG:
		return "image/png"
	case RenderJSON:
		return "application/json"
	default:
		return "image/svg+xml"
	}
}

// RenderRequest describes one render. Zero sizes use the configured canvas.
type RenderRequest struct {
	Format RenderFormat
	Width  int
	Height int
}

// RenderOutput is an encoded render.
type RenderOutput struct {
	ContentType string
	Body        []byte
	Result      render.Result
}

// surface is a render.Surface that can encode itself.
type surface interface {
	render.Surface
	encode() ([]byte, error)
}

type svgSurface struct{ *svg.Surface }

func (s svgSurface) encode() ([]byte, error) { return s.Bytes(), nil }

type pngSurface struct{ *raster.Surface }

func (s pngSurface) encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type displaySurface struct{ *display.Surface }

func (s displaySurface) encode() ([]byte, error) { return s.JSON() }

func newSurface(format RenderFormat, width, height int) (surface, error) {
	switch format {
	case RenderSVG:
		return svgSurface{svg.New(width, height)}, nil
	case RenderPNG:
		r, err := raster.New(width, height)
		if errors.Is(err, raster.ErrTooLarge) {
			return nil, fmt.Errorf("%w: %w", ErrCanvasTooLarge, err)
		}
		if err != nil {
			return nil, err
		}
		return pngSurface{r}, nil
	case RenderJSON:
		return displaySurface{display.New(width, height)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrRenderFormat, string(format))
	}
}

// Render draws the timeline on a fresh surface. Drawing happens on the loop;
// encoding happens afterwards on the caller's goroutine.
func (s *Service) Render(ctx context.Context, req RenderRequest) (RenderOutput, error) {
	if req.Format == "" {
		req.Format = RenderSVG
	}
	start := time.Now()

	var (
		surf surface
		res  render.Result
	)
	err := s.submit(ctx, "render", func(_ context.Context, t *model.Timeline) error {
		width, height := s.canvasSize(t, req)
		sf, err := newSurface(req.Format, width, height)
		if err != nil {
			return err
		}
		res = s.renderer.Render(t, sf)
		surf = sf
		return nil
	})
	if err != nil {
		return RenderOutput{}, err
	}

	body, err := surf.encode()
	if err != nil {
		metrics.RecordErrorByComponent("service", "render_encode")
		return RenderOutput{}, fmt.Errorf("encode %s: %w", req.Format, err)
	}

	elapsed := time.Since(start)
	metrics.RecordRender(string(req.Format), float64(elapsed.Milliseconds()), res.Primitives)
	s.logger.Info(ctx, "timeline rendered",
		logger.String("format", string(req.Format)),
		logger.Int("width", res.Width),
		logger.Int("height", res.Height),
		logger.Int("primitives", res.Primitives),
		logger.Duration("elapsed", elapsed),
	)
	return RenderOutput{ContentType: req.Format.ContentType(), Body: body, Result: res}, nil
}

func (s *Service) canvasSize(t *model.Timeline, req RenderRequest) (int, int) {
	width := req.Width
	if width <= 0 {
		width = s.canvasWidth
	}
	if width <= 0 {
		width = render.CanvasWidth(t)
	}
	height := req.Height
	if height <= 0 {
		height = s.canvasHeight
	}
	return width, height
}
