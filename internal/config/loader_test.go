package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

// Each scenario lives in its own test function: t.Setenv lasts for the whole
// function, so sharing one function would leak overrides across scenarios.

func TestLoadDefaults(t *testing.T) {
	Convey("Given no overrides", t, func() {
		cfg, err := Load(context.Background())

		Convey("Then defaults apply", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9080")
			So(cfg.DataDir, ShouldEqual, "data")
			So(cfg.OutputDir, ShouldEqual, "output")
			So(cfg.Schedule, ShouldEqual, "30 11 * * 1-5")
			So(cfg.CollectTimeout, ShouldEqual, 2*time.Hour)
			So(cfg.FetchWorkers, ShouldEqual, 8)
			So(cfg.MinScore, ShouldEqual, 8.0)
			So(cfg.PublishEnabled, ShouldBeFalse)
		})
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MOAT_ADDR", ":8000")
	t.Setenv("MOAT_FETCH_WORKERS", "16")
	t.Setenv("MOAT_COLLECT_TIMEOUT", "45m")
	t.Setenv("MOAT_LOG_LEVEL", "debug")

	Convey("Given environment overrides", t, func() {
		cfg, err := Load(context.Background())

		Convey("Then env values win over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":8000")
			So(cfg.FetchWorkers, ShouldEqual, 16)
			So(cfg.CollectTimeout, ShouldEqual, 45*time.Minute)
			So(cfg.LogLevel, ShouldEqual, "debug")

			Convey("And untouched fields keep defaults", func() {
				So(cfg.QueueSize, ShouldEqual, 10_000)
				So(cfg.BatchPause, ShouldEqual, 90*time.Second)
			})
		})
	})
}

func writeConfigFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "moatwatch.yaml")
	body := "addr: \":7070\"\nbatch_size: 50\nreport_title: Custom Picks\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("MOAT_CONFIG", writeConfigFile(t))

	Convey("Given a YAML config file", t, func() {
		cfg, err := Load(context.Background())

		Convey("Then file values layer over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7070")
			So(cfg.BatchSize, ShouldEqual, 50)
			So(cfg.ReportTitle, ShouldEqual, "Custom Picks")
		})
	})
}

func TestLoadEnvOverFile(t *testing.T) {
	t.Setenv("MOAT_CONFIG", writeConfigFile(t))
	t.Setenv("MOAT_ADDR", ":6060")

	Convey("Given both a config file and an env override", t, func() {
		cfg, err := Load(context.Background())

		Convey("Then env wins over the file", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":6060")
			So(cfg.BatchSize, ShouldEqual, 50)
		})
	})
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("MOAT_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	Convey("Given a missing config file", t, func() {
		_, err := Load(context.Background())

		Convey("Then loading fails", func() {
			So(errors.Is(err, ErrLoadConfig), ShouldBeTrue)
		})
	})
}

func TestValidateSameDirs(t *testing.T) {
	t.Setenv("MOAT_DATA_DIR", "shared")
	t.Setenv("MOAT_OUTPUT_DIR", "shared")

	Convey("Given data and output pointing at the same directory", t, func() {
		_, err := Load(context.Background())

		Convey("Then loading is rejected", func() {
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
		})
	})
}

func TestValidateCollectTimeout(t *testing.T) {
	t.Setenv("MOAT_COLLECT_TIMEOUT", "0s")

	Convey("Given a nonpositive collect timeout", t, func() {
		_, err := Load(context.Background())

		Convey("Then loading is rejected", func() {
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
		})
	})
}

func TestValidateScheduleRequired(t *testing.T) {
	t.Setenv("MOAT_SCHEDULE", " ")

	Convey("Given an empty schedule without run-once", t, func() {
		_, err := Load(context.Background())

		Convey("Then loading is rejected", func() {
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
		})
	})
}

func TestValidateRunOnceWithoutSchedule(t *testing.T) {
	t.Setenv("MOAT_SCHEDULE", " ")
	t.Setenv("MOAT_RUN_ONCE", "true")

	Convey("Given run-once enabled and no schedule", t, func() {
		cfg, err := Load(context.Background())

		Convey("Then the config is acceptable", func() {
			So(err, ShouldBeNil)
			So(cfg.RunOnce, ShouldBeTrue)
		})
	})
}
