package driver

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/phanxgames/arbor"
	"github.com/phanxgames/arbor/ecs"
)

const (
	circleSegments = 32
	// Flush before uint16 indices overflow.
	maxBatchVerts = 65000
)

// --- White pixel singleton (single-threaded, no sync.Once) ---

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image used as
// the source for untextured triangles.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// shapeRenderer batches the built-in shapes into DrawTriangles calls in
// display-list order.
type shapeRenderer struct {
	points []arbor.Vec2
	verts  []ebiten.Vertex
	inds   []uint16
}

func newShapeRenderer() *shapeRenderer {
	return &shapeRenderer{
		points: make([]arbor.Vec2, 0, circleSegments),
		verts:  make([]ebiten.Vertex, 0, 1024),
		inds:   make([]uint16, 0, 1536),
	}
}

// draw paints every visible shape and returns how many were drawn.
func (r *shapeRenderer) draw(screen *ebiten.Image, eng *arbor.Engine, cam *Camera) int {
	view := cam.ViewMatrix()
	visible := cam.VisibleBounds()
	store := eng.Store()

	drawn := 0
	for _, en := range eng.Tree().DisplayList() {
		if cam.CullEnabled {
			if bb, ok := eng.Bounds(en.Entity); ok && !bb.Self.Intersects(visible) {
				continue
			}
		}
		pts, col, ok := r.outline(store, en.Entity)
		if !ok {
			continue
		}
		if len(r.verts)+len(pts) > maxBatchVerts {
			r.flush(screen)
		}
		r.appendFan(view.Multiply(eng.WorldMatrix(en.Entity)), pts, col)
		drawn++
	}
	r.flush(screen)
	return drawn
}

// outline returns id's shape as a convex local-space polygon.
func (r *shapeRenderer) outline(store *ecs.Store, id ecs.Entity) ([]arbor.Vec2, arbor.Color, bool) {
	r.points = r.points[:0]
	if s, ok := ecs.Get[arbor.RectShape](store, id); ok {
		r.points = append(r.points,
			arbor.Vec2{X: s.X, Y: s.Y},
			arbor.Vec2{X: s.X + s.Width, Y: s.Y},
			arbor.Vec2{X: s.X + s.Width, Y: s.Y + s.Height},
			arbor.Vec2{X: s.X, Y: s.Y + s.Height},
		)
		return r.points, s.Color, true
	}
	if s, ok := ecs.Get[arbor.CircleShape](store, id); ok {
		for i := 0; i < circleSegments; i++ {
			sin, cos := math.Sincos(2 * math.Pi * float64(i) / circleSegments)
			r.points = append(r.points, arbor.Vec2{X: s.CenterX + cos*s.Radius, Y: s.CenterY + sin*s.Radius})
		}
		return r.points, s.Color, true
	}
	if s, ok := ecs.Get[arbor.PolygonShape](store, id); ok && len(s.Points) >= 3 {
		return s.Points, s.Color, true
	}
	return nil, arbor.Color{}, false
}

// appendFan fan-triangulates pts through m. N vertices, 3*(N-2) indices.
func (r *shapeRenderer) appendFan(m arbor.Affine, pts []arbor.Vec2, col arbor.Color) {
	base := uint16(len(r.verts))
	cr := float32(col.R * col.A)
	cg := float32(col.G * col.A)
	cb := float32(col.B * col.A)
	ca := float32(col.A)
	for _, p := range pts {
		x, y := m.Apply(p.X, p.Y)
		r.verts = append(r.verts, ebiten.Vertex{
			DstX: float32(x), DstY: float32(y),
			SrcX: 0.5, SrcY: 0.5,
			ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca,
		})
	}
	for i := 1; i < len(pts)-1; i++ {
		r.inds = append(r.inds, base, base+uint16(i), base+uint16(i+1))
	}
}

func (r *shapeRenderer) flush(screen *ebiten.Image) {
	if len(r.inds) == 0 {
		r.verts = r.verts[:0]
		return
	}
	var op ebiten.DrawTrianglesOptions
	screen.DrawTriangles(r.verts, r.inds, ensureWhitePixel(), &op)
	r.verts = r.verts[:0]
	r.inds = r.inds[:0]
}

var boundsColor = color.RGBA{R: 255, G: 64, B: 64, A: 200}

// drawBounds outlines every entity's Total box in screen space.
func drawBounds(screen *ebiten.Image, eng *arbor.Engine, cam *Camera) {
	view := cam.ViewMatrix()
	for _, en := range eng.Tree().DisplayList() {
		bb, ok := eng.Bounds(en.Entity)
		if !ok || bb.Total.Empty() {
			continue
		}
		sr := bb.Total.Transform(view)
		vector.StrokeRect(screen,
			float32(sr.MinX), float32(sr.MinY), float32(sr.Width()), float32(sr.Height()),
			1, boundsColor, false)
	}
}

// toRGBA converts a straight-alpha Color to a premultiplied color.RGBA.
func toRGBA(c arbor.Color) color.RGBA {
	clamp := func(v float64) uint8 {
		return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
	}
	return color.RGBA{
		R: clamp(c.R * c.A),
		G: clamp(c.G * c.A),
		B: clamp(c.B * c.A),
		A: clamp(c.A),
	}
}
