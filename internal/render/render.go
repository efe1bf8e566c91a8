// Package render rasterizes the overlay text into an RGBA canvas.
package render

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Renderer draws outlined, centered text on a fixed-size canvas.
// It is not safe for concurrent use because faces are not.
type Renderer struct {
	width       int
	height      int
	face        font.Face
	fill        image.Image
	stroke      image.Image
	strokeWidth int
}

// Options configures a Renderer
type Options struct {
	Width       int
	Height      int
	Face        font.Face
	TextColor   color.Color
	StrokeColor color.Color
	StrokeWidth int
}

// New creates a renderer
func New(opts Options) *Renderer {
	return &Renderer{
		width:       opts.Width,
		height:      opts.Height,
		face:        opts.Face,
		fill:        image.NewUniform(opts.TextColor),
		stroke:      image.NewUniform(opts.StrokeColor),
		strokeWidth: opts.StrokeWidth,
	}
}

// Bounds returns the canvas rectangle
func (r *Renderer) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.width, r.height)
}

// Center returns the baseline origin that centers a string whose ink is
// textWidth pixels wide and whose ascent is ascent pixels.
func Center(width, height, textWidth, ascent int) image.Point {
	return image.Pt((width-textWidth)/2, (height+ascent)/2)
}

// InkWidth returns the width of the pixels text actually covers, which
// differs from the advance by the side bearings.
func InkWidth(face font.Face, text string) int {
	bounds, _ := font.BoundString(face, text)
	return (bounds.Max.X - bounds.Min.X).Ceil()
}

// Origin returns the baseline origin for text
func (r *Renderer) Origin(text string) image.Point {
	return Center(r.width, r.height, InkWidth(r.face, text), r.face.Metrics().Ascent.Ceil())
}

// Frame renders text into a new canvas
func (r *Renderer) Frame(text string) *image.RGBA {
	dst := image.NewRGBA(r.Bounds())
	r.Draw(dst, text)
	return dst
}

// Draw clears dst to fully transparent and draws text. The outline is
// the text drawn in the stroke color at every offset of the square
// neighbourhood around the origin except the origin itself; the fill
// goes on top at the origin.
func (r *Renderer) Draw(dst draw.Image, text string) {
	Clear(dst)
	if text == "" {
		return
	}

	origin := r.Origin(text)
	d := &font.Drawer{Dst: dst, Face: r.face}

	d.Src = r.stroke
	for i := -r.strokeWidth; i <= r.strokeWidth; i++ {
		for j := -r.strokeWidth; j <= r.strokeWidth; j++ {
			if i == 0 && j == 0 {
				continue
			}
			d.Dot = fixed.P(origin.X+i, origin.Y+j)
			d.DrawString(text)
		}
	}

	d.Src = r.fill
	d.Dot = fixed.P(origin.X, origin.Y)
	d.DrawString(text)
}

// Clear overwrites every pixel with transparent black
func Clear(dst draw.Image) {
	draw.Draw(dst, dst.Bounds(), image.Transparent, image.Point{}, draw.Src)
}
