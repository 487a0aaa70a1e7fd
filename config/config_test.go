package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvSource, "")
	t.Setenv(EnvOutputDir, "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultSource, cfg.Source)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, []string{"ic_launcher.png", "ic_launcher_round.png"}, cfg.Filenames)
	assert.Equal(t, DefaultDebounce, cfg.Watch.Debounce)

	require.Len(t, cfg.Densities, 5)
	want := map[string]int{
		"mipmap-mdpi":    48,
		"mipmap-hdpi":    72,
		"mipmap-xhdpi":   96,
		"mipmap-xxhdpi":  144,
		"mipmap-xxxhdpi": 192,
	}
	for _, d := range cfg.Densities {
		assert.Equal(t, want[d.Folder], d.Size, d.Folder)
	}
}

func TestDefaultIsACopy(t *testing.T) {
	cfg := Default()
	cfg.Densities[0].Size = 1
	cfg.Filenames[0] = "changed.png"

	assert.Equal(t, 48, DefaultDensities[0].Size)
	assert.Equal(t, "ic_launcher.png", DefaultFilenames[0])
}

func TestLoadConfig(t *testing.T) {
	t.Setenv(EnvSource, "")
	t.Setenv(EnvOutputDir, "")

	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "mipmapgen.yaml")

	configContent := `
source: "assets/logo.png"
output_dir: "app/res"
filenames: ["icon.png"]
densities:
  - folder: "mipmap-hdpi"
    size: 72
  - folder: "mipmap-xxxhdpi"
    size: 192
watch:
  debounce: 250ms
`
	require.NoError(t, os.WriteFile(configFile, []byte(configContent), 0644))

	cfg, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, "assets/logo.png", cfg.Source)
	assert.Equal(t, "app/res", cfg.OutputDir)
	assert.Equal(t, []string{"icon.png"}, cfg.Filenames)
	assert.Equal(t, []Density{
		{Folder: "mipmap-hdpi", Size: 72},
		{Folder: "mipmap-xxxhdpi", Size: 192},
	}, cfg.Densities)
	assert.Equal(t, 250*time.Millisecond, cfg.Watch.Debounce)
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	t.Setenv(EnvSource, "")
	t.Setenv(EnvOutputDir, "")

	configFile := filepath.Join(t.TempDir(), "mipmapgen.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("source: other.png\n"), 0644))

	cfg, err := Load(configFile)
	require.NoError(t, err)

	assert.Equal(t, "other.png", cfg.Source)
	assert.Equal(t, DefaultOutputDir, cfg.OutputDir)
	assert.Equal(t, DefaultDensities, cfg.Densities)
}

func TestLoadErrors(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := Load(filepath.Join(tmpDir, "missing.yaml"))
	assert.Error(t, err)

	broken := filepath.Join(tmpDir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("densities: [oops"), 0644))
	_, err = Load(broken)
	assert.Error(t, err)

	invalid := filepath.Join(tmpDir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("densities:\n  - folder: x\n    size: 0\n"), 0644))
	_, err = Load(invalid)
	assert.ErrorContains(t, err, "size must be positive")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvSource, "from-env.png")
	t.Setenv(EnvOutputDir, "env/res")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "from-env.png", cfg.Source)
	assert.Equal(t, "env/res", cfg.OutputDir)
}

func TestLoadDotEnv(t *testing.T) {
	t.Setenv(EnvSource, "")
	tmpDir := t.TempDir()

	require.NoError(t, LoadDotEnv(filepath.Join(tmpDir, "absent.env")))
	require.NoError(t, LoadDotEnv(""))

	envFile := filepath.Join(tmpDir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(EnvSource+"=dotenv-logo.png\n"), 0644))

	// godotenv does not override variables that are already set
	require.NoError(t, os.Unsetenv(EnvSource))
	require.NoError(t, LoadDotEnv(envFile))
	assert.Equal(t, "dotenv-logo.png", os.Getenv(EnvSource))
}

func TestValidateConfig(t *testing.T) {
	valid := func() Config { return *Default() }

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing source",
			mutate:  func(c *Config) { c.Source = "" },
			wantErr: true,
		},
		{
			name:    "missing output_dir",
			mutate:  func(c *Config) { c.OutputDir = "" },
			wantErr: true,
		},
		{
			name:    "no filenames",
			mutate:  func(c *Config) { c.Filenames = nil },
			wantErr: true,
		},
		{
			name:    "filename with directory",
			mutate:  func(c *Config) { c.Filenames = []string{"sub/ic_launcher.png"} },
			wantErr: true,
		},
		{
			name:    "unsupported extension",
			mutate:  func(c *Config) { c.Filenames = []string{"ic_launcher.svg"} },
			wantErr: true,
		},
		{
			name:    "jpeg filename",
			mutate:  func(c *Config) { c.Filenames = []string{"ic_launcher.jpg"} },
			wantErr: false,
		},
		{
			name:    "no densities",
			mutate:  func(c *Config) { c.Densities = nil },
			wantErr: true,
		},
		{
			name:    "empty folder",
			mutate:  func(c *Config) { c.Densities = []Density{{Size: 48}} },
			wantErr: true,
		},
		{
			name: "duplicate folder",
			mutate: func(c *Config) {
				c.Densities = []Density{{Folder: "a", Size: 1}, {Folder: "a", Size: 2}}
			},
			wantErr: true,
		},
		{
			name:    "negative size",
			mutate:  func(c *Config) { c.Densities = []Density{{Folder: "a", Size: -1}} },
			wantErr: true,
		},
		{
			name:    "zero debounce",
			mutate:  func(c *Config) { c.Watch.Debounce = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDestination(t *testing.T) {
	cfg := Default()
	got := cfg.Destination(Density{Folder: "mipmap-hdpi", Size: 72}, "ic_launcher.png")
	assert.Equal(t, filepath.Join("android", "app", "src", "main", "res", "mipmap-hdpi", "ic_launcher.png"), got)
}
