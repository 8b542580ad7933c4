package config

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	apperrors "chartline-trader/internal/errors"
)

func TestLoadCreatesTemplate(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err != nil {
		t.Errorf("template not written: %v", err)
	}

	if cfg.Pipeline.StartNumber != 1 || cfg.Pipeline.LeftRequired != 1 || cfg.Pipeline.MainTrendlinePosition != 1 {
		t.Errorf("pipeline defaults = %+v", cfg.Pipeline)
	}
	if cfg.Extract.Finder != "label" || cfg.Extract.Tolerance != 60 {
		t.Errorf("extract defaults = %+v", cfg.Extract)
	}
	if cfg.Store.Path != filepath.Join(dir, "chartline.db") {
		t.Errorf("store path = %s", cfg.Store.Path)
	}
}

func TestLoadReadsFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[pipeline]
start_number = 3
left_required = 2
right_required = 0
main_trendline_position = 4
distance_threshold = 50
num_contracts = 5
allow_trailing = true

[extract]
red_color = "#ef5350"
green_color = "#26a69a"
crop_x = 10
crop_y = 20
crop_width = 300
crop_height = 200

[batch]
workers = 3
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p := cfg.Pipeline
	if p.StartNumber != 3 || p.LeftRequired != 2 || p.RightRequired != 0 || p.MainTrendlinePosition != 4 ||
		p.DistanceThreshold != 50 || p.NumContracts != 5 || !p.AllowTrailing {
		t.Errorf("pipeline = %+v", p)
	}
	if cfg.Batch.Workers != 3 {
		t.Errorf("workers = %d", cfg.Batch.Workers)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("missing sections should keep defaults, level = %q", cfg.Logging.Level)
	}

	ex, err := cfg.ExtractorConfig()
	if err != nil {
		t.Fatalf("ExtractorConfig: %v", err)
	}
	if ex.Red != (color.RGBA{R: 0xef, G: 0x53, B: 0x50, A: 0xff}) {
		t.Errorf("red = %v", ex.Red)
	}
	if ex.Crop != image.Rect(10, 20, 310, 220) {
		t.Errorf("crop = %v", ex.Crop)
	}
	if ex.StartNumber != 3 {
		t.Errorf("start number = %d", ex.StartNumber)
	}
}

func TestLoadRejectsInvalidDistance(t *testing.T) {
	dir := t.TempDir()
	content := "[pipeline]\ndistance_threshold = 30\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(dir)
	if !errors.Is(err, apperrors.ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
	var ve *apperrors.ValidationError
	if !errors.As(err, &ve) || ve.Field != "distance_threshold" {
		t.Errorf("validation error = %+v", ve)
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CHARTLINE_STORE_PATH", "/tmp/other.db")
	t.Setenv("CHARTLINE_DISTANCE_THRESHOLD", "100")
	t.Setenv("CHARTLINE_LOG_LEVEL", "debug")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Path != "/tmp/other.db" || cfg.Pipeline.DistanceThreshold != 100 || cfg.Logging.Level != "debug" {
		t.Errorf("overrides not applied: store=%s distance=%d level=%s",
			cfg.Store.Path, cfg.Pipeline.DistanceThreshold, cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"tolerance", func(c *Config) { c.Extract.Tolerance = 300 }, "extract.tolerance"},
		{"min area", func(c *Config) { c.Extract.MinArea = -1 }, "extract.min_area"},
		{"workers", func(c *Config) { c.Batch.Workers = -1 }, "batch.workers"},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"pipeline", func(c *Config) { c.Pipeline.MainTrendlinePosition = 9 }, "main_trendline_position"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default(t.TempDir())
			if err := cfg.Validate(); err != nil {
				t.Fatalf("defaults invalid: %v", err)
			}
			tt.mutate(cfg)
			var ve *apperrors.ValidationError
			if err := cfg.Validate(); !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("got %v, want error on %s", err, tt.field)
			}
		})
	}
}

func TestExtractorConfigRejectsBadColor(t *testing.T) {
	cfg := Default(t.TempDir())
	cfg.Extract.GreenColor = "green"
	if _, err := cfg.ExtractorConfig(); !errors.Is(err, apperrors.ErrConfigInvalid) {
		t.Errorf("expected ErrConfigInvalid, got %v", err)
	}
}
