// Command slicer manages 25-slice border data and renders sliced sprites.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"git.sr.ht/~gioverse/slicer/config"
	"git.sr.ht/~gioverse/slicer/profile"
)

const Usage = `usage: slicer [flags] <command> [args]

commands:
  render <sprite>          render the sprite sliced to -width x -height
  get <sprite>             print the stored borders of a sprite as JSON
  set <sprite> v1..v4 h1..h4
                           store borders for a sprite, in percent
  decode <marked>          read borders from the 1px marker frame of an
                           image, store them and write the clean image
  keys                     list stored sprite keys
  purge <dir>              remove records of sprites no longer in dir

flags:
`

var (
	ConfigPath = flag.String("config", "slicer.yml", "config to read")

	StoreKind = flag.String("store", "", "override the store kind: memory, dir or sqlite")
	StorePath = flag.String("store-path", "", "override the store directory or database file")

	Width  = flag.Int("width", 0, "render width in pixels, defaults to the sprite width")
	Height = flag.Int("height", 0, "render height in pixels, defaults to the sprite height")
	FlipX  = flag.Bool("flipx", false, "mirror the texture horizontally")
	FlipY  = flag.Bool("flipy", false, "mirror the texture vertically")
	Debug  = flag.Bool("debug", false, "tint each region with its debug colour")
	Interp = flag.String("interp", "", "override interpolation: nearest, bilinear, catmullrom or lanczos")
	Output = flag.String("o", "", "output file, defaults to <sprite>_sliced.png")

	DryRun = flag.Bool("dry-run", false, "report what purge would remove without removing it")

	Profile = profile.None
)

func main() {
	log.SetFlags(log.Flags() | log.Lshortfile)
	flag.Var(&Profile, "profile", "profile the command: cpu, mem, block, goroutine, mutex or trace")
	flag.Usage = func() {
		log.Print(Usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(2)
	}

	conf, err := config.Load(*ConfigPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *StoreKind != "" {
		conf.Store.Kind = *StoreKind
	}
	if *StorePath != "" {
		conf.Store.Path = *StorePath
	}
	if *Interp != "" {
		conf.Interpolation = *Interp
	}
	if err := conf.Validate(); err != nil {
		log.Fatalf("invalid settings: %v", err)
	}
	s, err := conf.OpenStore()
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}

	p := Profile.NewProfiler()
	p.Start()
	defer p.Stop()

	cmd := &Command{
		Config: conf,
		Store:  s,
		Out:    os.Stdout,
		Render: RenderOptions{
			Width:  *Width,
			Height: *Height,
			FlipX:  *FlipX,
			FlipY:  *FlipY,
			Debug:  *Debug,
			Output: *Output,
		},
		DryRun: *DryRun,
	}
	if err := cmd.Run(context.Background(), args); err != nil {
		log.Printf("%s: %v", args[0], err)
		p.Stop()
		os.Exit(1)
	}
}
