package render

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"clock-overlay/internal/fonts"
)

var (
	green = color.RGBA{0, 0xff, 0, 0xff}
	black = color.RGBA{0, 0, 0, 0xff}
)

func newRenderer(t *testing.T, face font.Face) *Renderer {
	t.Helper()
	return New(Options{
		Width:       100,
		Height:      50,
		Face:        face,
		TextColor:   green,
		StrokeColor: black,
		StrokeWidth: 2,
	})
}

func goMono(t *testing.T) font.Face {
	t.Helper()
	face, err := fonts.NewGoMonoProvider().Face(context.Background(), "mono", 20)
	require.NoError(t, err)
	t.Cleanup(func() { face.Close() })
	return face
}

func TestCenter(t *testing.T) {
	tests := []struct {
		w, h, tw, ascent int
		want             image.Point
	}{
		{100, 50, 60, 20, image.Pt(20, 35)},
		{100, 50, 61, 19, image.Pt(19, 34)},
		{101, 51, 0, 0, image.Pt(50, 25)},
		{100, 50, 120, 20, image.Pt(-10, 35)},
	}

	for _, tc := range tests {
		got := Center(tc.w, tc.h, tc.tw, tc.ascent)
		assert.Equal(t, tc.want, got)
		assert.Equal(t, (tc.w-tc.tw)/2, got.X)
	}
}

func TestOrigin_IndependentOfFont(t *testing.T) {
	for _, face := range []font.Face{basicfont.Face7x13, goMono(t)} {
		r := newRenderer(t, face)
		tw := InkWidth(face, "12:34")
		assert.Equal(t, (100-tw)/2, r.Origin("12:34").X)
	}
}

func TestInkWidth(t *testing.T) {
	face := goMono(t)

	bounds, _ := font.BoundString(face, "12:34")
	assert.Equal(t, (bounds.Max.X - bounds.Min.X).Ceil(), InkWidth(face, "12:34"))
	assert.Less(t, InkWidth(face, "12:34"), font.MeasureString(face, "12:34").Ceil(),
		"ink excludes the trailing side bearing of a monospace advance")
	assert.Zero(t, InkWidth(face, ""))
}

func TestDraw_Idempotent(t *testing.T) {
	r := newRenderer(t, goMono(t))

	first := r.Frame("09:05")
	second := r.Frame("09:05")
	assert.Equal(t, first.Pix, second.Pix)

	// Redrawing into a used canvas does not accumulate
	reused := r.Frame("23:59")
	r.Draw(reused, "09:05")
	assert.Equal(t, first.Pix, reused.Pix)
}

func TestDraw_ClearsPreviousContent(t *testing.T) {
	r := newRenderer(t, basicfont.Face7x13)

	canvas := image.NewRGBA(r.Bounds())
	for i := range canvas.Pix {
		canvas.Pix[i] = 0xff
	}

	r.Draw(canvas, "")
	for i, v := range canvas.Pix {
		if v != 0 {
			t.Fatalf("pixel byte %d = %d; want fully transparent canvas", i, v)
		}
	}
}

func TestDraw_StrokeAndFill(t *testing.T) {
	r := newRenderer(t, goMono(t))
	frame := r.Frame("88:88")

	var greens, blacks int
	b := frame.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := frame.RGBAAt(x, y)
			switch {
			case c == green:
				greens++
			case c == black:
				blacks++
			}
		}
	}
	assert.Greater(t, greens, 0, "fill color should be visible")
	assert.Greater(t, blacks, 0, "stroke color should be visible")

	// Corners stay transparent on a 100x50 canvas
	assert.Equal(t, color.RGBA{}, frame.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{}, frame.RGBAAt(99, 49))
}

func TestDraw_NoStroke(t *testing.T) {
	r := New(Options{
		Width:       100,
		Height:      50,
		Face:        basicfont.Face7x13,
		TextColor:   green,
		StrokeColor: black,
		StrokeWidth: 0,
	})
	frame := r.Frame("00:00")

	for i := 0; i < len(frame.Pix); i += 4 {
		c := color.RGBA{frame.Pix[i], frame.Pix[i+1], frame.Pix[i+2], frame.Pix[i+3]}
		assert.NotEqual(t, black, c)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"green", color.RGBA{0, 0xff, 0, 0xff}},
		{"black", color.RGBA{0, 0, 0, 0xff}},
		{"Dark Orange", color.RGBA{0xff, 0x8c, 0x00, 0xff}},
		{"#ff8800", color.RGBA{0xff, 0x88, 0x00, 0xff}},
		{"#0f0", color.RGBA{0, 0xff, 0, 0xff}},
	}
	for _, tc := range tests {
		got, err := ParseColor(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	for _, bad := range []string{"", "not-a-color", "#12", "#gggggg"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestEncodeZPixmap(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{0x11, 0x22, 0x33, 0xff})
	img.SetRGBA(1, 0, color.RGBA{0x01, 0x02, 0x03, 0x80})

	assert.Equal(t,
		[]byte{0x33, 0x22, 0x11, 0xff, 0x03, 0x02, 0x01, 0x80},
		EncodeZPixmap(img, true))
	assert.Equal(t,
		[]byte{0xff, 0x11, 0x22, 0x33, 0x80, 0x01, 0x02, 0x03},
		EncodeZPixmap(img, false))
}

func TestEncodeZPixmap_SubImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.SetRGBA(2, 2, color.RGBA{1, 2, 3, 4})
	sub := img.SubImage(image.Rect(2, 2, 3, 3)).(*image.RGBA)

	assert.Equal(t, []byte{3, 2, 1, 4}, EncodeZPixmap(sub, true))
}
