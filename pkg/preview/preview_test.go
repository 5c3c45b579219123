package preview

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"github.com/chazu/greeble/pkg/kernel"
	"github.com/chazu/greeble/pkg/kernel/editmesh"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestBounds(t *testing.T) {
	k := editmesh.New()
	a := k.Plane(1)
	b := k.Plane(2)
	k.Transform(b, sdf.Translate3d(v3.Vec{X: 3, Y: 1}))

	r, ok := Bounds(a, nil, b)
	if !ok {
		t.Fatal("Bounds found nothing")
	}
	if r.Min.X != -0.5 || r.Min.Y != -0.5 || r.Max.X != 4 || r.Max.Y != 2 {
		t.Errorf("Bounds = %+v", r)
	}
	if _, ok := Bounds(kernel.NewMesh()); ok {
		t.Error("empty mesh has bounds")
	}
}

func TestFit(t *testing.T) {
	k := editmesh.New()
	r, _ := Bounds(k.Plane(2))
	opt := Options{Width: 200, Height: 100, Margin: 10}
	p := fit(r, opt)

	// 2x2 world into an 180x80 drawable area: height limits, centred in x.
	tests := []struct {
		x, y, px, py float64
	}{
		{-1, -1, 60, 90},
		{1, 1, 140, 10},
		{0, 0, 100, 50},
	}
	for _, tt := range tests {
		px, py := p.apply(tt.x, tt.y)
		if px != tt.px || py != tt.py {
			t.Errorf("apply(%v, %v) = (%v, %v), want (%v, %v)", tt.x, tt.y, px, py, tt.px, tt.py)
		}
	}
}

func TestRenderDrawsEdges(t *testing.T) {
	k := editmesh.New()
	m := k.Plane(1)
	k.MarkSharp(m, m.FaceEdges(0)[:1])

	opt := DefaultOptions()
	opt.Width, opt.Height, opt.Margin, opt.LineWidth = 100, 100, 10, 2
	dc, err := Render([]*kernel.Mesh{m}, opt)
	if err != nil {
		t.Fatal(err)
	}
	defer dc.Close()

	img := dc.Image()
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 100 {
		t.Fatalf("image is %v", b)
	}
	bg := opt.Background.Color()
	same := func(x, y int) bool {
		r1, g1, b1, _ := img.At(x, y).RGBA()
		r2, g2, b2, _ := bg.RGBA()
		return r1>>8 == r2>>8 && g1>>8 == g2>>8 && b1>>8 == b2>>8
	}
	if same(10, 50) {
		t.Error("left edge not drawn")
	}
	if same(89, 50) {
		t.Error("right edge not drawn")
	}
	if !same(50, 50) {
		t.Error("face interior was painted")
	}
}

func TestWritePNG(t *testing.T) {
	m := editmesh.New().Circle(1, 6)
	var buf bytes.Buffer
	opt := DefaultOptions()
	opt.Width, opt.Height = 64, 32
	if err := WritePNG(&buf, []*kernel.Mesh{m}, opt); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Errorf("decoded size %v", b)
	}
}

func TestRenderRejects(t *testing.T) {
	if _, err := Render(nil, DefaultOptions()); !errors.Is(err, ErrEmpty) {
		t.Errorf("nil meshes: err = %v, want ErrEmpty", err)
	}
	opt := DefaultOptions()
	opt.Width = 0
	if _, err := Render([]*kernel.Mesh{editmesh.New().Plane(1)}, opt); err == nil {
		t.Error("zero width accepted")
	}
}

// --- shaded ---

func TestShade(t *testing.T) {
	k := editmesh.New()
	m := k.Plane(1)
	if _, err := k.InsetFace(m, 0, 0.2, -0.05, false); err != nil {
		t.Fatal(err)
	}

	opt := DefaultShadedOptions()
	opt.Width, opt.Height = 80, 60
	img, err := Shade([]*kernel.Mesh{m}, opt)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 80 || b.Dy() != 60 {
		t.Fatalf("image is %v, want 80x60 after downsampling", b)
	}
	// The camera looks at the middle of the panel.
	r, g, b, _ := img.At(40, 30).RGBA()
	if r>>8 == 0xFF && g>>8 == 0xF8 && b>>8 == 0xE3 {
		t.Error("panel not drawn at the image center")
	}
}

func TestShadeRejects(t *testing.T) {
	k := editmesh.New()
	wire := k.Circle(1, 6)
	if err := k.DeleteFace(wire, 0, true); err != nil {
		t.Fatal(err)
	}
	if _, err := Shade([]*kernel.Mesh{wire}, DefaultShadedOptions()); !errors.Is(err, ErrEmpty) {
		t.Errorf("wire mesh: err = %v, want ErrEmpty", err)
	}
	opt := DefaultShadedOptions()
	opt.Height = -1
	if _, err := Shade([]*kernel.Mesh{editmesh.New().Plane(1)}, opt); err == nil {
		t.Error("negative height accepted")
	}
}

func TestWriteShadedPNG(t *testing.T) {
	var buf bytes.Buffer
	opt := DefaultShadedOptions()
	opt.Width, opt.Height, opt.Supersample = 32, 32, 1
	if err := WriteShadedPNG(&buf, []*kernel.Mesh{editmesh.New().Plane(1)}, opt); err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Errorf("output is not a PNG: %v", err)
	}
}
