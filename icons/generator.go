package icons

// Launcher icon generator
//
// Loads one source image and writes a square, Lanczos-resampled copy of it
// for every configured density, once per configured filename.

import (
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"mipmapgen/config"
)

// Result describes the files written for one density
type Result struct {
	Density config.Density
	Paths   []string
}

// Generator writes icon sets from a source image
type Generator struct {
	cfg *config.Config
}

// NewGenerator creates a new icon generator
func NewGenerator(cfg *config.Config) *Generator {
	return &Generator{cfg: cfg}
}

// Generate writes every density of the icon set. It stops at the first
// failure; files written before it are left in place.
func (g *Generator) Generate() ([]Result, error) {
	// EXIF orientation is not applied; pixels are resized as stored
	src, err := imaging.Open(g.cfg.Source)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open source image %s", g.cfg.Source)
	}

	bounds := src.Bounds()
	if bounds.Dx() != bounds.Dy() {
		logrus.Warnf("source image %s is %dx%d, icons will be stretched to a square",
			g.cfg.Source, bounds.Dx(), bounds.Dy())
	}

	results := make([]Result, 0, len(g.cfg.Densities))
	for _, d := range g.cfg.Densities {
		paths, err := g.writeDensity(src, d)
		if err != nil {
			return results, errors.Wrapf(err, "density %s", d.Folder)
		}
		logrus.WithFields(logrus.Fields{
			"folder": d.Folder,
			"size":   d.Size,
		}).Debug("density written")
		results = append(results, Result{Density: d, Paths: paths})
	}

	return results, nil
}

// writeDensity resizes once and saves the bitmap under every filename
func (g *Generator) writeDensity(src image.Image, d config.Density) ([]string, error) {
	resized := Resize(src, d.Size)

	dir := filepath.Join(g.cfg.OutputDir, d.Folder)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create output directory")
	}

	paths := make([]string, 0, len(g.cfg.Filenames))
	for _, name := range g.cfg.Filenames {
		path := g.cfg.Destination(d, name)
		if err := imaging.Save(resized, path); err != nil {
			return nil, errors.Wrapf(err, "failed to save %s", path)
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// Resize scales img to a size x size square using Lanczos resampling
func Resize(img image.Image, size int) *image.NRGBA {
	return imaging.Resize(img, size, size, imaging.Lanczos)
}
