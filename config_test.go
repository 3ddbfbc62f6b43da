package rubble_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"rubble"
)

func TestConfigEnabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     *rubble.Config
		feature string
		want    bool
	}{
		{
			name:    "default config enables everything",
			cfg:     rubble.DefaultConfig(),
			feature: rubble.FeatureImplicitRescue,
			want:    true,
		},
		{
			name:    "unknown feature defaults to enabled",
			cfg:     rubble.DefaultConfig(),
			feature: "someFutureFeature",
			want:    true,
		},
		{
			name:    "explicit false disables",
			cfg:     &rubble.Config{Features: map[string]bool{rubble.FeatureImplicitHashValue: false}},
			feature: rubble.FeatureImplicitHashValue,
			want:    false,
		},
		{
			name:    "enableAll overrides explicit false",
			cfg:     &rubble.Config{EnableAll: true, Features: map[string]bool{rubble.FeatureImplicitRescue: false}},
			feature: rubble.FeatureImplicitRescue,
			want:    true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.cfg.Enabled(tt.feature); got != tt.want {
				t.Errorf("Enabled(%q) = %v, want %v", tt.feature, got, tt.want)
			}
		})
	}
}

func TestConfigSet(t *testing.T) {
	t.Parallel()

	cfg := rubble.DefaultConfig()
	cfg.Set(rubble.FeatureImplicitRescue, false)

	if cfg.Enabled(rubble.FeatureImplicitRescue) {
		t.Error("feature still enabled after Set(false)")
	}

	cfg.Set(rubble.FeatureImplicitRescue, true)

	if !cfg.Enabled(rubble.FeatureImplicitRescue) {
		t.Error("feature still disabled after Set(true)")
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, ".rubble.yaml")

	content := `features:
  implicitRescue: false
  implicitHashValue: true
`

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := rubble.LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile() error: %v", err)
	}

	if cfg.Enabled(rubble.FeatureImplicitRescue) {
		t.Error("implicitRescue enabled, want disabled")
	}

	if !cfg.Enabled(rubble.FeatureImplicitHashValue) {
		t.Error("implicitHashValue disabled, want enabled")
	}
}

func TestFindConfigWalksUp(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	nested := filepath.Join(root, "a", "b", "c")

	if err := os.MkdirAll(nested, 0o750); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(root, "rubble.yml")
	if err := os.WriteFile(path, []byte("enableAll: true\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	found, err := rubble.FindConfig(nested)
	if err != nil {
		t.Fatalf("FindConfig() error: %v", err)
	}

	if found != path {
		t.Errorf("FindConfig() = %q, want %q", found, path)
	}

	cfg, err := rubble.LoadConfig(nested)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if !cfg.EnableAll {
		t.Error("EnableAll = false, want true")
	}
}

func TestLoadConfigNotFound(t *testing.T) {
	t.Parallel()

	// An isolated temp dir has no config anywhere up its tree, except in
	// the unlikely case a parent temp dir carries one.
	_, err := rubble.LoadConfig(t.TempDir())
	if err != nil && !errors.Is(err, rubble.ErrConfigNotFound) {
		t.Errorf("error = %v, want ErrConfigNotFound", err)
	}
}
