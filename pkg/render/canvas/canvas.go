// Package canvas rasterizes diagrams the way the browser canvas shows them:
// rounded boxes at their stored positions, coloured by kind, joined by
// straight arrows.
package canvas

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/matzehuels/archboard/pkg/diagram"
	"github.com/matzehuels/archboard/pkg/render"
)

// Drawing constants, in canvas pixels before scaling.
const (
	margin       = 40.0
	cornerRadius = 8.0
	borderWidth  = 1.5
	edgeWidth    = 1.4
	arrowLength  = 10.0
	arrowWidth   = 6.0
	labelSize    = 13.0
	captionSize  = 10.0

	// emptyWidth and emptyHeight size the image of a diagram with no nodes.
	emptyWidth  = 400.0
	emptyHeight = 300.0

	// maxSide bounds either image dimension after scaling.
	maxSide = 8192.0
)

var (
	fontOnce sync.Once
	fontTTF  *truetype.Font
	fontErr  error
)

func loadFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		fontTTF, fontErr = truetype.Parse(goregular.TTF)
	})
	return fontTTF, fontErr
}

// Rasterizer draws PNG snapshots of diagrams. The zero value renders at
// scale 1.
type Rasterizer struct {
	// Scale multiplies the output resolution; 2 suits high-DPI displays.
	Scale float64
}

// New returns a Rasterizer with the given scale; values <= 0 mean 1.
func New(scale float64) *Rasterizer {
	return &Rasterizer{Scale: scale}
}

type box struct {
	x, y, w, h float64
}

func (b box) center() (float64, float64) { return b.x + b.w/2, b.y + b.h/2 }

// RenderPNG draws d and returns the encoded PNG.
func (r *Rasterizer) RenderPNG(ctx context.Context, d *diagram.Diagram) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	face, err := loadFont()
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}

	boxes := make(map[string]box, len(d.Nodes))
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range d.Nodes {
		size := render.NodeSize(n)
		b := box{n.Position.X, n.Position.Y, size.W, size.H}
		boxes[n.ID] = b
		minX, minY = math.Min(minX, b.x), math.Min(minY, b.y)
		maxX, maxY = math.Max(maxX, b.x+b.w), math.Max(maxY, b.y+b.h)
	}

	width, height := emptyWidth, emptyHeight
	originX, originY := 0.0, 0.0
	if len(boxes) > 0 {
		width, height = maxX-minX+2*margin, maxY-minY+2*margin
		originX, originY = minX-margin, minY-margin
	}

	scale := r.scale(width, height)
	p := painter{
		dc:    gg.NewContext(int(math.Ceil(width*scale)), int(math.Ceil(height*scale))),
		scale: scale,
		ox:    originX,
		oy:    originY,
		font:  face,
	}
	p.dc.SetHexColor(render.Background)
	p.dc.Clear()

	for _, e := range d.Edges {
		from, okFrom := boxes[e.From]
		to, okTo := boxes[e.To]
		if !okFrom || !okTo || e.From == e.To {
			continue
		}
		p.edge(from, to, e)
	}
	for i, n := range d.Nodes {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		p.node(boxes[n.ID], n)
	}

	var buf bytes.Buffer
	if err := p.dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// scale returns the effective scale, reduced so neither side exceeds maxSide.
func (r *Rasterizer) scale(width, height float64) float64 {
	s := r.Scale
	if s <= 0 {
		s = 1
	}
	if side := math.Max(width, height) * s; side > maxSide {
		s *= maxSide / side
	}
	return s
}

// painter maps diagram coordinates to image pixels.
type painter struct {
	dc     *gg.Context
	scale  float64
	ox, oy float64
	font   *truetype.Font
}

func (p painter) px(x, y float64) (float64, float64) {
	return (x - p.ox) * p.scale, (y - p.oy) * p.scale
}

func (p painter) face(size float64) font.Face {
	return truetype.NewFace(p.font, &truetype.Options{
		Size:    size * p.scale,
		Hinting: font.HintingFull,
	})
}

func (p painter) node(b box, n diagram.Node) {
	style := render.StyleFor(n.Type)
	x, y := p.px(b.x, b.y)
	w, h := b.w*p.scale, b.h*p.scale
	dc := p.dc

	dc.DrawRoundedRectangle(x, y, w, h, cornerRadius*p.scale)
	dc.SetHexColor(style.Fill)
	dc.FillPreserve()
	dc.SetHexColor(style.Border)
	dc.SetLineWidth(borderWidth * p.scale)
	if style.Dashed {
		dc.SetDash(6*p.scale, 4*p.scale)
	}
	dc.Stroke()
	dc.SetDash()

	cx, cy := x+w/2, y+h/2
	dc.SetHexColor(render.TextColor)
	dc.SetFontFace(p.face(labelSize))
	dc.DrawStringAnchored(n.Name, cx, cy-3*p.scale, 0.5, 0.5)

	dc.SetHexColor(style.Border)
	dc.SetFontFace(p.face(captionSize))
	dc.DrawStringAnchored(n.Type.Label(), cx, cy+11*p.scale, 0.5, 0.5)
}

func (p painter) edge(from, to box, e diagram.Edge) {
	fx, fy := from.center()
	tx, ty := to.center()
	sx, sy := clip(from, tx, ty)
	ex, ey := clip(to, fx, fy)

	x1, y1 := p.px(sx, sy)
	x2, y2 := p.px(ex, ey)
	dc := p.dc

	dc.SetHexColor(render.EdgeColor)
	dc.SetLineWidth(edgeWidth * p.scale)
	if e.IsAsync() {
		dc.SetDash(5*p.scale, 4*p.scale)
	}
	dc.DrawLine(x1, y1, x2, y2)
	dc.Stroke()
	dc.SetDash()

	// Arrowhead at the target border.
	angle := math.Atan2(y2-y1, x2-x1)
	l, hw := arrowLength*p.scale, arrowWidth*p.scale/2
	bx, by := x2-l*math.Cos(angle), y2-l*math.Sin(angle)
	dc.MoveTo(x2, y2)
	dc.LineTo(bx+hw*math.Sin(angle), by-hw*math.Cos(angle))
	dc.LineTo(bx-hw*math.Sin(angle), by+hw*math.Cos(angle))
	dc.ClosePath()
	dc.Fill()

	label := e.Label
	if label == "" {
		label = string(e.Type)
	}
	if label != "" {
		dc.SetFontFace(p.face(captionSize))
		dc.DrawStringAnchored(label, (x1+x2)/2, (y1+y2)/2-6*p.scale, 0.5, 0.5)
	}
}

// clip returns the point where the segment from b's centre towards (x, y)
// leaves b.
func clip(b box, x, y float64) (float64, float64) {
	cx, cy := b.center()
	dx, dy := x-cx, y-cy
	if dx == 0 && dy == 0 {
		return cx, cy
	}
	sx, sy := math.Inf(1), math.Inf(1)
	if dx != 0 {
		sx = (b.w / 2) / math.Abs(dx)
	}
	if dy != 0 {
		sy = (b.h / 2) / math.Abs(dy)
	}
	t := math.Min(math.Min(sx, sy), 1)
	return cx + dx*t, cy + dy*t
}
