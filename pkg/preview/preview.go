// Package preview draws generated meshes: top-down wireframes and shaded
// perspective views.
//
// Wireframe edges are projected onto the XY plane and fitted into the image
// with a margin, Y up. Sharp edges are drawn last, in their own color, so
// creases stand out over the plain topology.
package preview

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/chazu/greeble/pkg/kernel"
	"github.com/gogpu/gg"
	"github.com/jbeda/geom"
)

// ErrEmpty is returned when there is nothing to draw.
var ErrEmpty = errors.New("preview: no edges to draw")

// Options controls the rendering.
type Options struct {
	Width, Height int
	Margin        float64 // pixels
	LineWidth     float64
	Background    gg.RGBA
	Edge          gg.RGBA
	Sharp         gg.RGBA
}

// DefaultOptions returns a 1024 pixel square dark-on-light style.
func DefaultOptions() Options {
	return Options{
		Width:      1024,
		Height:     1024,
		Margin:     16,
		LineWidth:  1,
		Background: gg.RGB(0.96, 0.96, 0.94),
		Edge:       gg.RGB(0.35, 0.38, 0.42),
		Sharp:      gg.RGB(0.85, 0.25, 0.1),
	}
}

// Bounds returns the XY bounds of every edge endpoint in meshes. It
// reports false when no mesh has an edge.
func Bounds(meshes ...*kernel.Mesh) (geom.Rect, bool) {
	var r geom.Rect
	found := false
	for _, m := range meshes {
		if m == nil {
			continue
		}
		for _, e := range m.Edges() {
			for _, v := range []kernel.VertexID{e.A, e.B} {
				p := m.Vertex(v)
				c := geom.Coord{X: p.X, Y: p.Y}
				if !found {
					r = geom.Rect{Min: c, Max: c}
					found = true
					continue
				}
				r.ExpandToContainCoord(c)
			}
		}
	}
	return r, found
}

// projection maps world XY into image pixels.
type projection struct {
	scale  float64
	offset geom.Coord
	height float64
}

func fit(world geom.Rect, opt Options) projection {
	w := float64(opt.Width) - 2*opt.Margin
	h := float64(opt.Height) - 2*opt.Margin
	scale := math.Inf(1)
	if world.Width() > 0 {
		scale = w / world.Width()
	}
	if world.Height() > 0 {
		scale = math.Min(scale, h/world.Height())
	}
	if math.IsInf(scale, 1) {
		scale = 1
	}
	// Center the drawing in whatever slack the aspect ratio leaves.
	return projection{
		scale: scale,
		offset: geom.Coord{
			X: opt.Margin + (w-world.Width()*scale)/2 - world.Min.X*scale,
			Y: opt.Margin + (h-world.Height()*scale)/2 - world.Min.Y*scale,
		},
		height: float64(opt.Height),
	}
}

func (p projection) apply(x, y float64) (float64, float64) {
	return x*p.scale + p.offset.X, p.height - (y*p.scale + p.offset.Y)
}

// Render draws meshes into a new context. The caller owns the context and
// must Close it.
func Render(meshes []*kernel.Mesh, opt Options) (*gg.Context, error) {
	if opt.Width <= 0 || opt.Height <= 0 {
		return nil, fmt.Errorf("preview: image size %dx%d", opt.Width, opt.Height)
	}
	world, ok := Bounds(meshes...)
	if !ok {
		return nil, ErrEmpty
	}
	proj := fit(world, opt)

	dc := gg.NewContext(opt.Width, opt.Height)
	dc.ClearWithColor(opt.Background)
	dc.SetLineWidth(opt.LineWidth)

	for _, pass := range []struct {
		sharp bool
		color gg.RGBA
	}{{false, opt.Edge}, {true, opt.Sharp}} {
		drawn := 0
		for _, m := range meshes {
			if m == nil {
				continue
			}
			for _, e := range m.Edges() {
				if m.Sharp(e) != pass.sharp {
					continue
				}
				a, b := m.Vertex(e.A), m.Vertex(e.B)
				x1, y1 := proj.apply(a.X, a.Y)
				x2, y2 := proj.apply(b.X, b.Y)
				dc.DrawLine(x1, y1, x2, y2)
				drawn++
			}
		}
		if drawn == 0 {
			continue
		}
		dc.SetRGBA(pass.color.R, pass.color.G, pass.color.B, pass.color.A)
		if err := dc.Stroke(); err != nil {
			dc.Close()
			return nil, fmt.Errorf("preview: stroke: %w", err)
		}
	}
	return dc, nil
}

// WritePNG renders meshes and encodes the image as PNG to w.
func WritePNG(w io.Writer, meshes []*kernel.Mesh, opt Options) error {
	dc, err := Render(meshes, opt)
	if err != nil {
		return err
	}
	defer dc.Close()
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("preview: encode: %w", err)
	}
	return nil
}
