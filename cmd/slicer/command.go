package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"git.sr.ht/~gioverse/slicer/config"
	"git.sr.ht/~gioverse/slicer/raster"
	"git.sr.ht/~gioverse/slicer/sprite"
	"git.sr.ht/~gioverse/slicer/store"
	"git.sr.ht/~gioverse/slicer/twentyfive"
)

// ErrUsage is returned for malformed command lines.
var ErrUsage = errors.New("bad usage")

// RenderOptions configure the render command.
type RenderOptions struct {
	Width, Height int
	FlipX, FlipY  bool
	Debug         bool
	Output        string
}

// Command executes subcommands against a store.
type Command struct {
	Config *config.Config
	Store  store.Store
	Out    io.Writer
	Render RenderOptions
	DryRun bool
}

// Run dispatches args[0].
func (c *Command) Run(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return ErrUsage
	}
	switch args[0] {
	case "render":
		if len(args) != 2 {
			return fmt.Errorf("%w: render <sprite>", ErrUsage)
		}
		return c.render(ctx, args[1])
	case "get":
		if len(args) != 2 {
			return fmt.Errorf("%w: get <sprite>", ErrUsage)
		}
		return c.get(ctx, args[1])
	case "set":
		if len(args) != 10 {
			return fmt.Errorf("%w: set <sprite> v1 v2 v3 v4 h1 h2 h3 h4", ErrUsage)
		}
		return c.set(ctx, args[1], args[2:])
	case "decode":
		if len(args) != 2 {
			return fmt.Errorf("%w: decode <marked>", ErrUsage)
		}
		return c.decode(ctx, args[1])
	case "keys":
		return c.keys(ctx)
	case "purge":
		if len(args) != 2 {
			return fmt.Errorf("%w: purge <dir>", ErrUsage)
		}
		return c.purge(ctx, args[1])
	}
	return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
}

func (c *Command) load(path string) (*sprite.Sprite, error) {
	s, err := sprite.Load(path)
	if err != nil {
		return nil, err
	}
	s.PixelsPerUnit = c.Config.PixelsPerUnit
	return s, nil
}

func (c *Command) render(ctx context.Context, path string) error {
	s, err := c.load(path)
	if err != nil {
		return err
	}
	b, found, err := store.Resolve(ctx, c.Store, s.Key(), c.Config.DefaultBorders())
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintf(c.Out, "no slice data for %s, using default borders\n", s.Key())
	}
	size := image.Pt(c.Render.Width, c.Render.Height)
	if size.X <= 0 {
		size.X = s.Bounds().Dx()
	}
	if size.Y <= 0 {
		size.Y = s.Bounds().Dy()
	}
	interp, err := raster.ParseInterpolation(c.Config.Interpolation)
	if err != nil {
		return err
	}
	opts := twentyfive.DefaultOptions()
	opts.FlipX, opts.FlipY = c.Render.FlipX, c.Render.FlipY
	img, err := raster.Slice(s, b, size, raster.Options{
		Interpolation: interp,
		Debug:         c.Render.Debug,
	}, opts)
	if err != nil {
		return err
	}
	out := c.Render.Output
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + "_sliced.png"
	}
	if err := writePNG(out, img); err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "wrote %s (%dx%d)\n", out, size.X, size.Y)
	return nil
}

func (c *Command) get(ctx context.Context, path string) error {
	s, err := c.load(path)
	if err != nil {
		return err
	}
	r, err := c.Store.Lookup(ctx, s.Key())
	if err != nil {
		return fmt.Errorf("%s: %w", s.Key(), err)
	}
	return json.NewEncoder(c.Out).Encode(r)
}

func (c *Command) set(ctx context.Context, path string, values []string) error {
	s, err := c.load(path)
	if err != nil {
		return err
	}
	var b twentyfive.BorderSet
	for ii, v := range values {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("%w: border %q: %v", ErrUsage, v, err)
		}
		if ii < 4 {
			b.Vertical[ii] = float32(f)
		} else {
			b.Horizontal[ii-4] = float32(f)
		}
	}
	if err := c.Store.Save(ctx, s.Key(), store.FromBorders(b)); err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "saved %s\n", s.Key())
	return nil
}

func (c *Command) decode(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()
	src, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	img, b, err := sprite.DecodeMarked(src)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	out := c.Render.Output
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + "_clean.png"
	}
	name := strings.TrimSuffix(filepath.Base(out), filepath.Ext(out))
	key := sprite.New(name, img).Key()
	if err := c.Store.Save(ctx, key, store.FromBorders(b)); err != nil {
		return err
	}
	if err := writePNG(out, img); err != nil {
		return err
	}
	fmt.Fprintf(c.Out, "wrote %s, saved %s\n", out, key)
	return nil
}

func (c *Command) keys(ctx context.Context) error {
	keys, err := c.Store.Keys(ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Fprintln(c.Out, k)
	}
	return nil
}

// purge removes every record whose sprite is not an image under dir.
func (c *Command) purge(ctx context.Context, dir string) error {
	live := make(map[string]bool)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".png", ".jpg", ".jpeg", ".bmp":
		default:
			return nil
		}
		s, err := sprite.Load(path)
		if err != nil {
			fmt.Fprintf(c.Out, "skipping %s: %v\n", path, err)
			return nil
		}
		live[s.Key()] = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("scanning %s: %w", dir, err)
	}
	if c.DryRun {
		keys, err := c.Store.Keys(ctx)
		if err != nil {
			return err
		}
		for _, k := range keys {
			if !live[k] {
				fmt.Fprintf(c.Out, "would remove %s\n", k)
			}
		}
		return nil
	}
	removed, err := store.Purge(ctx, c.Store, func(k string) bool { return live[k] })
	for _, k := range removed {
		fmt.Fprintf(c.Out, "removed %s\n", k)
	}
	return err
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}
