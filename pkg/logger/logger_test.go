package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}

	err = InitWithFormat(FormatJSON)
	if err != nil {
		t.Fatalf("failed to initialize json logger: %v", err)
	}
	if Get() == nil {
		t.Fatal("logger is nil after json initialization")
	}
}

func TestLoggerNamed(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	namedLogger := Named("test")
	if namedLogger == nil {
		t.Fatal("named logger is nil")
	}
	namedLogger.Info(context.Background(), "test message")
}

func TestNewWriter(t *testing.T) {
	Convey("Given a logger writing into a buffer", t, func() {
		var buf bytes.Buffer
		log := New(&buf, WithLevel(slog.LevelDebug))
		ctx := context.Background()

		Convey("When logging with fields", func() {
			log.Info(ctx, "event created", String("id", "a"), Int("count", 3), Bool("sorted", true))

			Convey("Then the line carries every field and the caller", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "event created")
				So(out, ShouldContainSubstring, "id=a")
				So(out, ShouldContainSubstring, "count=3")
				So(out, ShouldContainSubstring, "sorted=true")
				So(out, ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When logging through a named logger", func() {
			log.Named("render").Warn(ctx, "slow", Error(errors.New("boom")))

			Convey("Then fields are grouped under the name", func() {
				So(buf.String(), ShouldContainSubstring, "render.error=boom")
			})
		})

		Convey("When the level is above the message level", func() {
			quiet := New(&buf, WithLevel(slog.LevelError))
			quiet.Info(ctx, "hidden")

			Convey("Then nothing is written", func() {
				So(buf.String(), ShouldNotContainSubstring, "hidden")
			})
		})

		Convey("When using the JSON format", func() {
			jsonLog := New(&buf, WithFormat(FormatJSON))
			jsonLog.Info(ctx, "json line", String("k", "v"))

			Convey("Then the output is a JSON object", func() {
				So(buf.String(), ShouldStartWith, "{")
				So(buf.String(), ShouldContainSubstring, `"k":"v"`)
			})
		})
	})
}

func TestLevelAndFormatParsing(t *testing.T) {
	Convey("Given level and format strings", t, func() {
		So(SetLevelString("debug"), ShouldBeNil)
		So(SetLevelString("WARNING"), ShouldBeNil)
		So(SetLevelString(""), ShouldBeNil)
		So(SetLevelString("loud"), ShouldNotBeNil)

		f, err := ParseFormat("JSON")
		So(err, ShouldBeNil)
		So(f, ShouldEqual, FormatJSON)

		f, err = ParseFormat("")
		So(err, ShouldBeNil)
		So(f, ShouldEqual, FormatText)

		_, err = ParseFormat("xml")
		So(err, ShouldNotBeNil)
	})
}
