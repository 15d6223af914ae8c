package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMatchesProductionReel(t *testing.T) {
	cfg := Default()
	if cfg.Video.Width != 720 || cfg.Video.Height != 1280 {
		t.Fatalf("unexpected canvas %dx%d", cfg.Video.Width, cfg.Video.Height)
	}
	if cfg.Video.FPS != 40 {
		t.Fatalf("expected 40 fps, got %d", cfg.Video.FPS)
	}
	if cfg.Timing.MaxLengthSec != 20 || cfg.Timing.TransitionSec != 2 {
		t.Fatalf("unexpected timing %+v", cfg.Timing)
	}
	if !cfg.Selection.RandomChoiceValue() {
		t.Fatal("expected random choice enabled by default")
	}
	if len(cfg.TextBoxes) != 2 {
		t.Fatalf("expected 2 default text boxes, got %d", len(cfg.TextBoxes))
	}
}

func TestRandomChoiceExplicitFalse(t *testing.T) {
	cfg := SelectionConfig{RandomChoice: boolPtr(false)}
	if cfg.RandomChoiceValue() {
		t.Fatal("expected RandomChoiceValue() = false")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "reelgen.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Video.Width != Default().Video.Width {
		t.Fatalf("expected default width, got %d", cfg.Video.Width)
	}
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reelgen.yaml")
	body := []byte(`
video:
  fps: 30
text_boxes:
  - text: "Hello"
selection:
  random_choice: false
`)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Video.FPS != 30 {
		t.Errorf("expected fps 30, got %d", cfg.Video.FPS)
	}
	if cfg.Video.Width != 720 {
		t.Errorf("expected default width 720, got %d", cfg.Video.Width)
	}
	if len(cfg.TextBoxes) != 1 {
		t.Fatalf("expected file text boxes to replace defaults, got %d", len(cfg.TextBoxes))
	}
	box := cfg.TextBoxes[0]
	if box.BoxWidth != 720 || box.Color != "#FFFFFF" || box.Size != 12 {
		t.Errorf("text box defaults not applied: %+v", box)
	}
	if cfg.Selection.RandomChoiceValue() {
		t.Error("expected random_choice false from file")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reelgen.yaml")
	if err := os.WriteFile(path, []byte("video: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected unmarshal error")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "reelgen.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Output.Key != cfg.Output.Key || loaded.Sources.Folder1 != cfg.Sources.Folder1 {
		t.Fatalf("round trip mismatch: %+v vs %+v", loaded.Output, cfg.Output)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(EnvVideoBucket, "other-bucket")
	t.Setenv(EnvStorageBackend, "LOCAL")

	cfg := Default()
	cfg.ApplyEnv()
	if cfg.Output.Bucket != "other-bucket" {
		t.Errorf("expected bucket override, got %q", cfg.Output.Bucket)
	}
	if cfg.Storage.Backend != BackendLocal {
		t.Errorf("expected backend %q, got %q", BackendLocal, cfg.Storage.Backend)
	}
}

func TestLoadEnvMissingFileIsNotAnError(t *testing.T) {
	if err := LoadEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
}

func TestLoadEnvReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(EnvVideoKey+"=videos/from-env.mp4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvVideoKey, "")
	os.Unsetenv(EnvVideoKey)

	if err := LoadEnv(path); err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	cfg := Default()
	cfg.ApplyEnv()
	if cfg.Output.Key != "videos/from-env.mp4" {
		t.Fatalf("expected key from env file, got %q", cfg.Output.Key)
	}
}
