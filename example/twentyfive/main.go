// Package main is a playground for toying with and showcasing 25-slice
// sprites.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"

	"gioui.org/app"
	"gioui.org/f32"
	"gioui.org/font/gofont"
	"gioui.org/io/pointer"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/component"
	"git.sr.ht/~gioverse/slicer/async"
	"git.sr.ht/~gioverse/slicer/debug"
	"git.sr.ht/~gioverse/slicer/editor"
	"git.sr.ht/~gioverse/slicer/profile"
	"git.sr.ht/~gioverse/slicer/sprite"
	"git.sr.ht/~gioverse/slicer/store"
	"git.sr.ht/~gioverse/slicer/twentyfive"
	slicewidget "git.sr.ht/~gioverse/slicer/widget"
	lorem "github.com/drhodes/golorem"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/exp/shiny/materialdesign/icons"
)

var (
	storeKind  = flag.String("store", store.KindMemory, "store kind: memory, dir or sqlite")
	storePath  = flag.String("store-path", "", "store directory or database file")
	spritePath = flag.String("sprite", "", "image to slice, defaults to a generated panel")
	profileOpt = profile.None
)

func main() {
	flag.Var(&profileOpt, "profile", "create the provided kind of profile. Use one of [none, cpu, mem, block, goroutine, mutex, trace, gio]")
	flag.Parse()
	s, err := store.Open(*storeKind, *storePath)
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}
	sp := panel()
	if *spritePath != "" {
		if sp, err = sprite.Load(*spritePath); err != nil {
			log.Fatalf("loading sprite: %v", err)
		}
	}
	ui, err := NewUI(context.Background(), s, sp)
	if err != nil {
		log.Fatalf("starting: %v", err)
	}
	go func() {
		w := app.NewWindow(
			app.Title("25-Slice"),
			app.Size(unit.Dp(1000), unit.Dp(700)),
		)
		if err := ui.Run(w); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Exit(0)
	}()
	// Surrender main thread to OS.
	// Necessary for certain platforms.
	app.Main()
}

type (
	C = layout.Context
	D = layout.Dimensions
)

var th = material.NewTheme(gofont.Collection())

var (
	saveIcon = func() *widget.Icon {
		icon, _ := widget.NewIcon(icons.ContentSave)
		return icon
	}()
	resetIcon = func() *widget.Icon {
		icon, _ := widget.NewIcon(icons.NavigationRefresh)
		return icon
	}()
)

// panel generates a framed gradient panel with distinct corners, so that
// every band of the slice is easy to tell apart.
func panel() *sprite.Sprite {
	const size = 60
	var (
		img   = image.NewNRGBA(image.Rect(0, 0, size, size))
		top   = colorful.Hsv(210, 0.6, 0.9)
		bot   = colorful.Hsv(250, 0.7, 0.5)
		frame = twentyfive.ToNRGBA(colorful.Hsv(30, 0.8, 0.4))
		gem   = twentyfive.ToNRGBA(colorful.Hsv(50, 0.9, 1))
	)
	for y := 0; y < size; y++ {
		fill := twentyfive.ToNRGBA(top.BlendLab(bot, float64(y)/size).Clamped())
		for x := 0; x < size; x++ {
			c := fill
			edge := x < 3 || y < 3 || x >= size-3 || y >= size-3
			corner := (x < 12 || x >= size-12) && (y < 12 || y >= size-12)
			switch {
			case edge:
				c = frame
			case corner && (x+y)%4 < 2:
				c = gem
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return sprite.New("panel", img)
}

// UI manages the state for the entire application's UI.
type UI struct {
	async.Loader
	Store   store.Store
	Sprite  *sprite.Sprite
	Session *editor.Session
	// Live previews unsaved borders, Stored lays out what the store holds.
	Live, Stored slicewidget.SliceImage
	// Source caches the unsliced texture.
	Source slicewidget.CachedImage
	// Target controls the size of the previews.
	Target struct {
		Width, Height widget.Float
	}
	Vertical, Horizontal [4]widget.Float
	FlipX, FlipY         widget.Bool
	Debug                widget.Bool
	Save, Reset          widget.Clickable
	ControlContainer     widget.List
	DemoContainer        widget.List
	// Text is the lorem content laid atop the previews.
	Text   string
	Status string
	// drag tags the pointer area of the source preview.
	drag bool
}

// NewUI opens an editing session for sp.
func NewUI(ctx context.Context, s store.Store, sp *sprite.Sprite) (*UI, error) {
	sess, err := editor.Open(ctx, s, sp)
	if err != nil {
		return nil, err
	}
	ui := &UI{
		Store:   s,
		Sprite:  sp,
		Session: sess,
		Text:    lorem.Paragraph(1, 2),
	}
	ui.Live = slicewidget.SliceImage{Sprite: sp, Scale: 2}
	ui.Stored = slicewidget.SliceImage{Sprite: sp, Store: s, Loader: &ui.Loader, Scale: 2}
	ui.Target.Width.Value = 360
	ui.Target.Height.Value = 180
	ui.syncSliders()
	if !sess.Found {
		ui.Status = "no slice data, editing default borders"
	}
	return ui, nil
}

// Run handles window events and renders the application.
func (ui *UI) Run(w *app.Window) error {
	profiler := profileOpt.NewProfiler()
	profiler.Start()
	defer ui.Loader.Close()
	var ops op.Ops
	for {
		select {
		case <-ui.Loader.Updated():
			w.Invalidate()
		case e := <-w.Events():
			switch e := e.(type) {
			case system.DestroyEvent:
				profiler.Stop()
				return e.Err
			case system.FrameEvent:
				gtx := layout.NewContext(&ops, e)
				profiler.Record(gtx)
				ui.Loader.Frame(gtx, ui.Layout)
				e.Frame(gtx.Ops)
			}
		}
	}
}

// syncSliders copies the session borders into the sliders.
func (ui *UI) syncSliders() {
	b := ui.Session.Borders()
	for ii := range ui.Vertical {
		ui.Vertical[ii].Value = b.Vertical[ii]
		ui.Horizontal[ii].Value = b.Horizontal[ii]
	}
}

func (ui *UI) update() {
	for ii := range ui.Vertical {
		if ui.Vertical[ii].Changed() {
			ui.Session.SetVertical(ii, ui.Vertical[ii].Value)
		}
		if ui.Horizontal[ii].Changed() {
			ui.Session.SetHorizontal(ii, ui.Horizontal[ii].Value)
		}
	}
	if ui.Reset.Clicked() {
		ui.Session.Reset()
	}
	if ui.Save.Clicked() {
		if err := ui.Session.Save(context.Background()); err != nil {
			ui.Status = err.Error()
			log.Printf("saving: %v", err)
		} else {
			ui.Status = "saved " + ui.Session.Key
			ui.Loader.Forget(ui.Session.Key)
		}
	}
	opts := twentyfive.DefaultOptions()
	opts.FlipX, opts.FlipY = ui.FlipX.Value, ui.FlipY.Value
	ui.Live.Options = opts
	ui.Stored.Options = opts
	ui.syncSliders()
}

// Layout the application UI.
func (ui *UI) Layout(gtx C) D {
	ui.update()
	return layout.Flex{
		Axis: layout.Vertical,
	}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			return layout.UniformInset(unit.Dp(12)).Layout(gtx, func(gtx C) D {
				return layout.Center.Layout(gtx, material.H4(th, "25-Slice Demo").Layout)
			})
		}),
		layout.Flexed(1, func(gtx C) D {
			return layout.Flex{}.Layout(gtx,
				layout.Rigid(func(gtx C) D {
					gtx.Constraints.Max.X = gtx.Dp(unit.Dp(360))
					gtx.Constraints.Min.X = gtx.Constraints.Max.X
					ui.ControlContainer.Axis = layout.Vertical
					return material.List(th, &ui.ControlContainer).Layout(gtx, 1, func(gtx C, _ int) D {
						return layout.UniformInset(unit.Dp(12)).Layout(gtx, ui.layoutControls)
					})
				}),
				layout.Flexed(1, func(gtx C) D {
					ui.DemoContainer.Axis = layout.Vertical
					return material.List(th, &ui.DemoContainer).Layout(gtx, 1, func(gtx C, _ int) D {
						return layout.UniformInset(unit.Dp(12)).Layout(gtx, ui.layoutDemo)
					})
				}),
			)
		}),
	)
}

func (ui *UI) layoutControls(gtx C) D {
	items := []layout.FlexChild{
		layout.Rigid(material.Body1(th, ui.Status).Layout),
		layout.Rigid(func(gtx C) D {
			return LabeledSliderStyle{
				Label:  material.Body1(th, fmt.Sprintf("Width: %.0fdp", ui.Target.Width.Value)),
				Slider: material.Slider(th, &ui.Target.Width, 0, 600),
			}.Layout(gtx)
		}),
		layout.Rigid(func(gtx C) D {
			return LabeledSliderStyle{
				Label:  material.Body1(th, fmt.Sprintf("Height: %.0fdp", ui.Target.Height.Value)),
				Slider: material.Slider(th, &ui.Target.Height, 0, 600),
			}.Layout(gtx)
		}),
	}
	for ii := range ui.Vertical {
		ii := ii
		items = append(items, layout.Rigid(func(gtx C) D {
			return LabeledSliderStyle{
				Label:  material.Body1(th, fmt.Sprintf("Vertical border %d: %.1f%%", ii+1, ui.Vertical[ii].Value)),
				Slider: material.Slider(th, &ui.Vertical[ii], 0, 100),
			}.Layout(gtx)
		}))
	}
	for ii := range ui.Horizontal {
		ii := ii
		items = append(items, layout.Rigid(func(gtx C) D {
			return LabeledSliderStyle{
				Label:  material.Body1(th, fmt.Sprintf("Horizontal border %d: %.1f%%", ii+1, ui.Horizontal[ii].Value)),
				Slider: material.Slider(th, &ui.Horizontal[ii], 0, 100),
			}.Layout(gtx)
		}))
	}
	items = append(items,
		layout.Rigid(func(gtx C) D {
			return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
				layout.Rigid(material.CheckBox(th, &ui.FlipX, "Flip X").Layout),
				layout.Rigid(material.CheckBox(th, &ui.FlipY, "Flip Y").Layout),
				layout.Rigid(material.CheckBox(th, &ui.Debug, "Debug").Layout),
			)
		}),
		layout.Rigid(func(gtx C) D {
			return layout.Inset{Top: unit.Dp(8), Bottom: unit.Dp(8)}.Layout(gtx, component.Divider(th).Layout)
		}),
		layout.Rigid(func(gtx C) D {
			modified := ""
			if ui.Session.Modified() {
				modified = " (modified)"
			}
			return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
				layout.Rigid(material.IconButton(th, &ui.Save, saveIcon, "Save borders").Layout),
				layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
				layout.Rigid(material.IconButton(th, &ui.Reset, resetIcon, "Reset borders").Layout),
				layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
				layout.Rigid(material.Body2(th, ui.Session.Key+modified).Layout),
			)
		}),
	)
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx, items...)
}

func (ui *UI) layoutDemo(gtx C) D {
	return layout.Flex{
		Axis:      layout.Vertical,
		Alignment: layout.Middle,
	}.Layout(gtx,
		layout.Rigid(material.Body1(th, "Source, drag the lines to move borders").Layout),
		layout.Rigid(ui.layoutSource),
		layout.Rigid(layout.Spacer{Height: unit.Dp(16)}.Layout),
		layout.Rigid(material.Body1(th, "Live").Layout),
		layout.Rigid(func(gtx C) D {
			return ui.layoutPreview(gtx, func(gtx C, size image.Point) D {
				sl := slicewidget.Slice{Borders: ui.Session.Borders(), Found: true}
				return ui.Live.Surface(gtx, size, sl)
			}, slicewidget.ContentInset(ui.Session.Borders(), ui.Sprite.Size(), ui.Live.Scale))
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(16)}.Layout),
		layout.Rigid(material.Body1(th, "Stored").Layout),
		layout.Rigid(func(gtx C) D {
			size := ui.targetSize(gtx)
			gtx.Constraints = layout.Exact(size)
			return debug.Outline(gtx, func(gtx C) D {
				return ui.Stored.Layout(gtx, ui.layoutText)
			})
		}),
	)
}

func (ui *UI) targetSize(gtx C) image.Point {
	return image.Pt(
		gtx.Dp(unit.Dp(ui.Target.Width.Value)),
		gtx.Dp(unit.Dp(ui.Target.Height.Value)),
	)
}

// layoutPreview draws a surface at the target size with text inset over it,
// and the region overlay when debugging.
func (ui *UI) layoutPreview(gtx C, surface func(gtx C, size image.Point) D, inset layout.Inset) D {
	size := ui.targetSize(gtx)
	gtx.Constraints = layout.Exact(size)
	return debug.Outline(gtx, func(gtx C) D {
		surface(gtx, size)
		if ui.Debug.Value {
			if g, err := ui.Live.Grid(gtx, size, ui.Session.Borders()); err == nil {
				debug.Regions(gtx, g, size.Y)
			}
		}
		inset.Layout(gtx, ui.layoutText)
		return D{Size: size}
	})
}

func (ui *UI) layoutText(gtx C) D {
	gtx.Constraints.Min = image.Point{}
	lb := material.Body2(th, ui.Text)
	lb.Color = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	return lb.Layout(gtx)
}

// layoutSource draws the sprite with its border lines and handles dragging
// them.
func (ui *UI) layoutSource(gtx C) D {
	var (
		src   = ui.Sprite.Size()
		scale = float32(gtx.Dp(unit.Dp(240))) / src.Y
		size  = image.Pt(int(src.X*scale), int(src.Y*scale))
		rect  = twentyfive.Span{Max: twentyfive.Vec2{X: float32(size.X), Y: float32(size.Y)}}
	)
	for _, ev := range gtx.Events(&ui.drag) {
		e, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		p := twentyfive.Vec2{X: e.Position.X, Y: e.Position.Y}
		switch e.Type {
		case pointer.Press:
			ui.Session.Press(rect, p)
		case pointer.Drag:
			ui.Session.Move(rect, p)
		case pointer.Release, pointer.Cancel:
			ui.Session.Release()
		}
	}
	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
	pointer.InputOp{
		Tag:   &ui.drag,
		Types: pointer.Press | pointer.Drag | pointer.Release,
	}.Add(gtx.Ops)
	switch ui.Session.Dragging().State {
	case editor.DragVertical:
		pointer.CursorColResize.Add(gtx.Ops)
	case editor.DragHorizontal:
		pointer.CursorRowResize.Add(gtx.Ops)
	case editor.DragIntersection:
		pointer.CursorGrab.Add(gtx.Ops)
	}

	func() {
		defer op.Affine(f32.Affine2D{}.Scale(f32.Point{}, f32.Pt(scale, scale))).Push(gtx.Ops).Pop()
		ui.Source.Op(ui.Sprite).Add(gtx.Ops)
		paint.PaintOp{}.Add(gtx.Ops)
	}()
	xs, ys := ui.Session.Lines(rect)
	line := color.NRGBA{R: 255, A: 220}
	for ii := range xs {
		x, y := int(xs[ii]), int(ys[ii])
		paint.FillShape(gtx.Ops, line, clip.Rect(image.Rect(x, 0, x+1, size.Y)).Op())
		paint.FillShape(gtx.Ops, line, clip.Rect(image.Rect(0, y, size.X, y+1)).Op())
	}
	return D{Size: size}
}

// LabeledSliderStyle stacks a label above a slider.
type LabeledSliderStyle struct {
	Label  material.LabelStyle
	Slider material.SliderStyle
}

func (l LabeledSliderStyle) Layout(gtx C) D {
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(l.Label.Layout),
		layout.Rigid(l.Slider.Layout),
	)
}
