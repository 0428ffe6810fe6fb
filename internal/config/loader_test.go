package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/timeline/internal/config"
	"github.com/okian/timeline/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
				convey.So(cfg.BandCycle, convey.ShouldEqual, 4)
				convey.So(cfg.Store, convey.ShouldEqual, "memory")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("TIMELINE_ADDR", ":8080")
			_ = os.Setenv("TIMELINE_QUEUE_SIZE", "64")
			_ = os.Setenv("TIMELINE_CANVAS_HEIGHT", "300")
			_ = os.Setenv("TIMELINE_DEFAULT_ZOOM", "2.5")
			_ = os.Setenv("TIMELINE_RESTORE_LATEST", "true")
			_ = os.Setenv("TIMELINE_LOG_FORMAT", "json")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.CanvasHeight, convey.ShouldEqual, 300)
				convey.So(cfg.DefaultZoom, convey.ShouldEqual, 2.5)
				convey.So(cfg.RestoreLatest, convey.ShouldBeTrue)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
queue_size: 300
band_cycle: 5
band_step: 20
default_start_year: 1990
default_end_year: 1999
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("TIMELINE_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 300)
				convey.So(cfg.BandCycle, convey.ShouldEqual, 5)
				convey.So(cfg.Layout().Step, convey.ShouldEqual, 20)
				convey.So(cfg.DefaultStartYear, convey.ShouldEqual, 1990)
				convey.So(cfg.DefaultEndYear, convey.ShouldEqual, 1999)
			})

			convey.Convey("Then unset keys keep their defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.CanvasHeight, convey.ShouldEqual, 600)
				convey.So(cfg.SpanStep, convey.ShouldEqual, 25)
				convey.So(cfg.MaxDocumentBytes, convey.ShouldEqual, 10485760)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile("addr: \":9090\"\nqueue_size: 300\n")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("TIMELINE_CONFIG", tmpFile)
			_ = os.Setenv("TIMELINE_ADDR", ":8080")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 300)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("TIMELINE_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("TIMELINE_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("TIMELINE_QUEUE_SIZE", "invalid")

			cfg, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})
}

func TestConfigValidation(t *testing.T) {
	convey.Convey("Given invalid settings", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When addr is empty", func() {
			_ = os.Setenv("TIMELINE_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the default viewport is degenerate", func() {
			_ = os.Setenv("TIMELINE_DEFAULT_ZOOM", "0")

			_, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(errors.Is(err, model.ErrDegenerateConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the end year precedes the start year", func() {
			_ = os.Setenv("TIMELINE_DEFAULT_START_YEAR", "2010")
			_ = os.Setenv("TIMELINE_DEFAULT_END_YEAR", "2000")

			_, err := config.Load(ctx)

			convey.So(errors.Is(err, model.ErrDegenerateConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the default viewport spans more than max_year_span", func() {
			_ = os.Setenv("TIMELINE_DEFAULT_START_YEAR", "1000")
			_ = os.Setenv("TIMELINE_DEFAULT_END_YEAR", "2000")
			_ = os.Setenv("TIMELINE_MAX_YEAR_SPAN", "500")

			_, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(errors.Is(err, model.ErrDegenerateConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When max_year_span is zero", func() {
			_ = os.Setenv("TIMELINE_MAX_YEAR_SPAN", "0")

			_, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "max_year_span")
		})

		convey.Convey("When band_cycle is zero", func() {
			_ = os.Setenv("TIMELINE_BAND_CYCLE", "0")

			_, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "band_cycle")
		})

		convey.Convey("When the store is unknown", func() {
			_ = os.Setenv("TIMELINE_STORE", "redis")

			_, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "redis")
		})

		convey.Convey("When postgres is selected without a DSN", func() {
			_ = os.Setenv("TIMELINE_STORE", "postgres")

			_, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)

			convey.Convey("Then supplying the DSN fixes it", func() {
				_ = os.Setenv("TIMELINE_DATABASE_URL", "postgres://localhost/timeline")

				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Store, convey.ShouldEqual, config.StorePostgres)
			})
		})
	})
}

// Helper functions

func clearConfigEnvVars() {
	for _, key := range []string{
		"CONFIG", "LOG_LEVEL", "LOG_FORMAT", "ADDR", "QUEUE_SIZE",
		"CANVAS_WIDTH", "CANVAS_HEIGHT", "BAND_CYCLE", "BAND_STEP",
		"SPAN_STEP", "SPAN_HEIGHT", "SPAN_BASELINE", "DEFAULT_ZOOM",
		"DEFAULT_START_YEAR", "DEFAULT_END_YEAR", "STORE", "DATABASE_URL",
		"RESTORE_LATEST", "MAX_DOCUMENT_BYTES", "MAX_YEAR_SPAN",
	} {
		_ = os.Unsetenv(config.EnvPrefix + key)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "timeline-config-*.yaml")
	if err != nil {
		panic(err)
	}
	defer func() { _ = tmpFile.Close() }()

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
