package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/retention/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		_ = os.Setenv("RETENTION_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("RETENTION_ADDR", ":8080")
			_ = os.Setenv("RETENTION_QUEUE_SIZE", "64")
			_ = os.Setenv("RETENTION_WORKER_COUNT", "2")
			_ = os.Setenv("RETENTION_FINAL_FRACTION", "0.8")
			_ = os.Setenv("RETENTION_VALUE_POLICY", "clamp")
			_ = os.Setenv("RETENTION_SUGGEST_API_KEY", "from-env")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 2)
				convey.So(cfg.FinalFraction, convey.ShouldEqual, 0.8)
				convey.So(cfg.ValuePolicy, convey.ShouldEqual, "clamp")
				convey.So(cfg.SuggestAPIKey, convey.ShouldEqual, "from-env")
			})
		})

		convey.Convey("When loading config with a YAML file and env vars", func() {
			tmpFile := createTempConfigFile(t, `
addr: ":9090"
queue_size: 300
worker_count: 24
early_severe: 50
highlight_count: 5
`)
			_ = os.Setenv("RETENTION_CONFIG", tmpFile)
			_ = os.Setenv("RETENTION_WORKER_COUNT", "32")

			cfg, err := config.Load(ctx)

			convey.Convey("Then env vars override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 300)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 32)
				convey.So(cfg.EarlySevere, convey.ShouldEqual, 50)
				convey.So(cfg.HighlightCount, convey.ShouldEqual, 5)
				convey.So(cfg.EarlyModerate, convey.ShouldEqual, 20)
			})
		})

		convey.Convey("When a file is passed explicitly", func() {
			explicit := createTempConfigFile(t, "queue_size: 77\n")
			_ = os.Setenv("RETENTION_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx, config.WithFile(explicit))

			convey.Convey("Then it replaces RETENTION_CONFIG", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 77)
			})
		})

		convey.Convey("When a .env file is present", func() {
			dotenv := filepath.Join(t.TempDir(), "test.env")
			convey.So(os.WriteFile(dotenv, []byte("RETENTION_SCRAPE_WINDOW=50\nRETENTION_ADDR=:7000\n"), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("RETENTION_ENV_FILE", dotenv)
			_ = os.Setenv("RETENTION_ADDR", ":7777")

			cfg, err := config.Load(ctx)

			convey.Convey("Then its values apply without overriding the real environment", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.ScrapeWindow, convey.ShouldEqual, 50)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7777")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("RETENTION_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("RETENTION_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("RETENTION_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
			})
		})

		convey.Convey("When loading config with an unknown value policy", func() {
			_ = os.Setenv("RETENTION_VALUE_POLICY", "wrap")

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		if name, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(name, "RETENTION_") {
			_ = os.Unsetenv(name)
		}
	}
}
