package preview

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/chazu/greeble/pkg/kernel"
	"github.com/chazu/greeble/pkg/kernel/editmesh"
	"github.com/chazu/greeble/pkg/logging"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
)

// ShadedOptions controls the shaded perspective view.
type ShadedOptions struct {
	Width, Height int
	Supersample   int // render at this multiple and downsample; 1 disables

	// Eye is the camera position once the scene is fitted into the
	// bi-unit cube centered at the origin. The camera looks at the origin
	// with +Z up.
	Eye   v3.Vec
	Light v3.Vec // direction towards the light

	Background string // hex colors
	Color      string
}

// DefaultShadedOptions returns a raised three-quarter view.
func DefaultShadedOptions() ShadedOptions {
	return ShadedOptions{
		Width:       1024,
		Height:      1024,
		Supersample: 2,
		Eye:         v3.Vec{X: 1.2, Y: -2.4, Z: 3.6},
		Light:       v3.Vec{X: -0.5, Y: 0.75, Z: 1},
		Background:  "#FFF8E3",
		Color:       "#468966",
	}
}

const (
	fovy  = 30 // degrees
	zNear = 1
	zFar  = 10
)

func vec(p v3.Vec) fauxgl.Vector { return fauxgl.V(p.X, p.Y, p.Z) }

// triangles converts every face of meshes into triangles. Faces that cannot
// be triangulated are skipped.
func triangles(meshes []*kernel.Mesh) []*fauxgl.Triangle {
	var out []*fauxgl.Triangle
	for _, m := range meshes {
		if m == nil {
			continue
		}
		for f := 0; f < m.FaceCount(); f++ {
			tris, err := editmesh.Triangulate(m, f)
			if err != nil {
				logging.Logger().Debug("preview: skipping face", "face", f, "err", err)
				continue
			}
			for _, t := range tris {
				out = append(out, fauxgl.NewTriangleForPoints(
					vec(m.Vertex(t[0])), vec(m.Vertex(t[1])), vec(m.Vertex(t[2]))))
			}
		}
	}
	return out
}

// Shade renders the faces of meshes with a Phong shader. Wire-only meshes
// have nothing to shade; ErrEmpty is returned when no face survives.
func Shade(meshes []*kernel.Mesh, opt ShadedOptions) (image.Image, error) {
	if opt.Width <= 0 || opt.Height <= 0 {
		return nil, fmt.Errorf("preview: image size %dx%d", opt.Width, opt.Height)
	}
	ss := max(opt.Supersample, 1)
	tris := triangles(meshes)
	if len(tris) == 0 {
		return nil, ErrEmpty
	}
	mesh := fauxgl.NewTriangleMesh(tris)
	mesh.BiUnitCube()

	ctx := fauxgl.NewContext(opt.Width*ss, opt.Height*ss)
	ctx.ClearColorBufferWith(fauxgl.HexColor(opt.Background))
	ctx.Cull = fauxgl.CullNone

	eye := vec(opt.Eye)
	aspect := float64(opt.Width) / float64(opt.Height)
	matrix := fauxgl.LookAt(eye, fauxgl.Vector{}, fauxgl.V(0, 0, 1)).Perspective(fovy, aspect, zNear, zFar)
	shader := fauxgl.NewPhongShader(matrix, vec(opt.Light).Normalize(), eye)
	shader.ObjectColor = fauxgl.HexColor(opt.Color)
	ctx.Shader = shader
	ctx.DrawMesh(mesh)

	img := ctx.Image()
	if ss > 1 {
		img = resize.Resize(uint(opt.Width), uint(opt.Height), img, resize.Bilinear)
	}
	return img, nil
}

// WriteShadedPNG renders meshes with Shade and encodes the image as PNG.
func WriteShadedPNG(w io.Writer, meshes []*kernel.Mesh, opt ShadedOptions) error {
	img, err := Shade(meshes, opt)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("preview: encode: %w", err)
	}
	return nil
}
