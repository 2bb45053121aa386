// Package config loads slicer settings from YAML.
//
//	store:
//	  kind: sqlite
//	  path: slices.db
//	borders:
//	  vertical: [20, 40, 60, 80]
//	  horizontal: [20, 40, 60, 80]
//	interpolation: catmullrom
//	pixelsperunit: 100
package config

import (
	"errors"
	"fmt"
	"os"

	"git.sr.ht/~gioverse/slicer/raster"
	"git.sr.ht/~gioverse/slicer/sprite"
	"git.sr.ht/~gioverse/slicer/store"
	"git.sr.ht/~gioverse/slicer/twentyfive"
	"gopkg.in/yaml.v2"
)

// Config holds the settings shared by the command line tools.
type Config struct {
	Store struct {
		Kind string `yaml:"kind"`
		Path string `yaml:"path"`
	} `yaml:"store"`
	// Borders used for sprites without a record.
	Borders struct {
		Vertical   [4]float32 `yaml:"vertical"`
		Horizontal [4]float32 `yaml:"horizontal"`
	} `yaml:"borders"`
	Interpolation string  `yaml:"interpolation"`
	PixelsPerUnit float32 `yaml:"pixelsperunit"`
}

// Default returns the built in settings: a directory store under
// "slices", the default borders and nearest neighbour sampling.
func Default() *Config {
	c := new(Config)
	c.Store.Kind = store.KindDir
	c.Store.Path = "slices"
	b := twentyfive.DefaultBorders()
	c.Borders.Vertical = b.Vertical
	c.Borders.Horizontal = b.Horizontal
	c.Interpolation = string(raster.Nearest)
	c.PixelsPerUnit = sprite.DefaultPixelsPerUnit
	return c
}

// Load reads the file at path over the defaults. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	c := Default()
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return nil, fmt.Errorf("decoding config at %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config at %s: %w", path, err)
	}
	return c, nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	switch c.Store.Kind {
	case store.KindMemory:
	case store.KindDir, store.KindSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store %s needs a path", c.Store.Kind)
		}
	default:
		return fmt.Errorf("unknown store kind %q", c.Store.Kind)
	}
	if err := c.DefaultBorders().Validate(); err != nil {
		return fmt.Errorf("default borders: %w", err)
	}
	if _, err := raster.ParseInterpolation(c.Interpolation); err != nil {
		return err
	}
	if c.PixelsPerUnit < 0 {
		return fmt.Errorf("negative pixels per unit %v", c.PixelsPerUnit)
	}
	return nil
}

// DefaultBorders returns the configured fallback borders.
func (c *Config) DefaultBorders() twentyfive.BorderSet {
	return twentyfive.BorderSet{
		Vertical:   c.Borders.Vertical,
		Horizontal: c.Borders.Horizontal,
	}
}

// OpenStore opens the configured store.
func (c *Config) OpenStore() (store.Store, error) {
	return store.Open(c.Store.Kind, c.Store.Path)
}

// Write saves the config as YAML.
func (c *Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
