package service

import (
	"github.com/okian/timeline/internal/adapters/repository"
	"github.com/okian/timeline/internal/domain/layout"
	"github.com/okian/timeline/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithQueueSize sets how many commands may wait for the loop.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore sets the snapshot store. The service closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLayout sets band and span layer geometry used by Render.
func WithLayout(o layout.Options) Option {
	return func(s *Service) {
		s.layout = o
	}
}

// WithCanvasSize sets the default render size. A zero width is computed from
// the year range on every render.
func WithCanvasSize(width, height int) Option {
	return func(s *Service) {
		if width >= 0 {
			s.canvasWidth = width
		}
		if height > 0 {
			s.canvasHeight = height
		}
	}
}

// WithViewport sets the viewport the timeline starts with. It is validated by Start.
func WithViewport(zoom float64, startYear, endYear int) Option {
	return func(s *Service) {
		s.zoom = zoom
		s.startYear = startYear
		s.endYear = endYear
	}
}

// WithMaxYearSpan caps how many years a viewport may cover. Values below 1
// are ignored.
func WithMaxYearSpan(years int) Option {
	return func(s *Service) {
		if years > 0 {
			s.maxYearSpan = years
		}
	}
}

// WithRestoreLatest makes Start load the newest snapshot, if any.
func WithRestoreLatest(enabled bool) Option {
	return func(s *Service) {
		s.restoreLatest = enabled
	}
}
