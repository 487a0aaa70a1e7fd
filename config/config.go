package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Defaults for an Android launcher icon set.
const (
	DefaultSource    = "boca-logo.png"
	DefaultOutputDir = "android/app/src/main/res"
	DefaultDebounce  = 500 * time.Millisecond
)

// Environment variables that override the source and output paths.
const (
	EnvSource    = "MIPMAPGEN_SOURCE"
	EnvOutputDir = "MIPMAPGEN_OUTPUT_DIR"
)

// DefaultFilenames are written into every density folder.
var DefaultFilenames = []string{"ic_launcher.png", "ic_launcher_round.png"}

// DefaultDensities is the mipmap table, ordered from smallest to largest.
var DefaultDensities = []Density{
	{Folder: "mipmap-mdpi", Size: 48},
	{Folder: "mipmap-hdpi", Size: 72},
	{Folder: "mipmap-xhdpi", Size: 96},
	{Folder: "mipmap-xxhdpi", Size: 144},
	{Folder: "mipmap-xxxhdpi", Size: 192},
}

// Config represents the generator configuration
type Config struct {
	Source    string      `yaml:"source"`
	OutputDir string      `yaml:"output_dir"`
	Filenames []string    `yaml:"filenames"`
	Densities []Density   `yaml:"densities"`
	Watch     WatchConfig `yaml:"watch"`
}

// Density is one output folder and the square side length written into it.
type Density struct {
	Folder string `yaml:"folder"`
	Size   int    `yaml:"size"`
}

type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Source:    DefaultSource,
		OutputDir: DefaultOutputDir,
		Filenames: append([]string(nil), DefaultFilenames...),
		Densities: append([]Density(nil), DefaultDensities...),
		Watch: WatchConfig{
			Debounce: DefaultDebounce,
		},
	}
}

// Load reads the configuration file on top of the defaults. An empty path
// skips the file. Environment overrides are applied before validation.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config")
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return cfg, nil
}

// LoadDotEnv loads variables from a dotenv file. A missing file is ignored.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "failed to load env file %s", path)
	}
	return nil
}

// ApplyEnv overrides paths from the environment
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvSource); v != "" {
		c.Source = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		c.OutputDir = v
	}
}

// Validate checks that the configuration can produce an icon set
func (c *Config) Validate() error {
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.OutputDir == "" {
		return errors.New("output_dir is required")
	}
	if len(c.Filenames) == 0 {
		return errors.New("at least one filename is required")
	}
	for _, name := range c.Filenames {
		if name == "" || filepath.Base(name) != name {
			return errors.Errorf("filename %q must be a plain file name", name)
		}
		if _, err := imaging.FormatFromFilename(name); err != nil {
			return errors.Wrapf(err, "filename %q", name)
		}
	}
	if len(c.Densities) == 0 {
		return errors.New("at least one density is required")
	}
	seen := make(map[string]bool, len(c.Densities))
	for _, d := range c.Densities {
		if d.Folder == "" {
			return errors.New("density folder is required")
		}
		if seen[d.Folder] {
			return errors.Errorf("duplicate density folder %q", d.Folder)
		}
		seen[d.Folder] = true
		if d.Size <= 0 {
			return errors.Errorf("density %s: size must be positive, got %d", d.Folder, d.Size)
		}
	}
	if c.Watch.Debounce <= 0 {
		return errors.Errorf("watch.debounce must be positive, got %s", c.Watch.Debounce)
	}
	return nil
}

// Destination returns the output path of one file in a density folder
func (c *Config) Destination(d Density, filename string) string {
	return filepath.Join(c.OutputDir, d.Folder, filename)
}
