// Package display owns the X11 overlay window: a 32-bit ARGB,
// override-redirect, click-through window drawn through XRender.
package display

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/render"
	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xfixes"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
)

const depth = 32

var (
	ErrNoARGBVisual = errors.New("no 32-bit TrueColor visual")
	ErrNoPictFormat = errors.New("no render format for visual")
)

// Options describes the window to create
type Options struct {
	Origin image.Point
	Width  int
	Height int
}

// Surface is the overlay window and the server resources drawn on it.
// All drawing methods must be called from a single goroutine.
type Surface struct {
	conn     *xgb.Conn
	xu       *xgbutil.XUtil
	screen   *xproto.ScreenInfo
	visual   xproto.Visualid
	colormap xproto.Colormap
	window   xproto.Window
	pixmap   xproto.Pixmap
	gc       xproto.Gcontext
	format   render.Pictformat
	picture  render.Picture
	source   render.Picture
	width    uint16
	height   uint16
	bands    []Band
	lsbFirst bool
	logger   *slog.Logger

	closeOnce sync.Once
}

// Connect opens a connection to displayName, or $DISPLAY when empty, and
// routes the protocol library's own logging into logger.
func Connect(displayName string, logger *slog.Logger) (*xgb.Conn, error) {
	if logger != nil {
		xgb.Logger = slog.NewLogLogger(logger.Handler(), slog.LevelWarn)
	}
	conn, err := xgb.NewConnDisplay(displayName)
	if err != nil {
		return nil, fmt.Errorf("failed to open X display: %w", err)
	}
	return conn, nil
}

// Root returns the root window of the default screen
func Root(conn *xgb.Conn) xproto.Window {
	return xproto.Setup(conn).DefaultScreen(conn).Root
}

// New creates and maps the overlay window. The surface takes ownership
// of conn; Close releases both.
func New(conn *xgb.Conn, opts Options, logger *slog.Logger) (*Surface, error) {
	if logger == nil {
		logger = slog.Default()
	}
	setup := xproto.Setup(conn)
	s := &Surface{
		conn:     conn,
		screen:   setup.DefaultScreen(conn),
		width:    uint16(opts.Width),
		height:   uint16(opts.Height),
		lsbFirst: setup.ImageByteOrder == xproto.ImageOrderLSBFirst,
		logger:   logger.With("component", "display"),
	}

	bands, err := Bands(opts.Width, opts.Height, xgbutil.MaxReqSize)
	if err != nil {
		conn.Close()
		return nil, err
	}
	s.bands = bands

	steps := []struct {
		name string
		fn   func() error
	}{
		{"find visual", s.findVisual},
		{"create colormap", s.createColormap},
		{"create window", func() error { return s.createWindow(opts.Origin) }},
		{"set always on top", s.setAbove},
		{"set input shape", s.setClickThrough},
		{"create picture", s.createPictures},
		{"map window", s.mapWindow},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			s.release()
			return nil, fmt.Errorf("failed to %s: %w", step.name, err)
		}
	}

	s.logger.Debug("overlay window mapped",
		"window", s.window, "x", opts.Origin.X, "y", opts.Origin.Y,
		"width", s.width, "height", s.height)
	return s, nil
}

func (s *Surface) findVisual() error {
	for _, d := range s.screen.AllowedDepths {
		if d.Depth != depth {
			continue
		}
		for _, v := range d.Visuals {
			if v.Class == xproto.VisualClassTrueColor {
				s.visual = v.VisualId
				return nil
			}
		}
	}
	return ErrNoARGBVisual
}

func (s *Surface) createColormap() error {
	cmap, err := xproto.NewColormapId(s.conn)
	if err != nil {
		return err
	}
	if err := xproto.CreateColormapChecked(s.conn, xproto.ColormapAllocNone,
		cmap, s.screen.Root, s.visual).Check(); err != nil {
		return err
	}
	s.colormap = cmap
	return nil
}

func (s *Surface) createWindow(origin image.Point) error {
	wid, err := xproto.NewWindowId(s.conn)
	if err != nil {
		return err
	}

	// Values are ordered by mask bit.
	mask := uint32(xproto.CwBackPixel | xproto.CwBorderPixel |
		xproto.CwOverrideRedirect | xproto.CwEventMask | xproto.CwColormap)
	values := []uint32{
		0, // transparent background
		0, // border
		1, // no window manager decorations
		xproto.EventMaskExposure | xproto.EventMaskEnterWindow | xproto.EventMaskLeaveWindow,
		uint32(s.colormap),
	}

	if err := xproto.CreateWindowChecked(s.conn, depth, wid, s.screen.Root,
		int16(origin.X), int16(origin.Y), s.width, s.height, 0,
		xproto.WindowClassInputOutput, s.visual, mask, values).Check(); err != nil {
		return err
	}
	s.window = wid
	return nil
}

func (s *Surface) setAbove() error {
	xu, err := xgbutil.NewConnXgb(s.conn)
	if err != nil {
		return err
	}
	s.xu = xu
	return ewmh.WmStateSet(xu, s.window, []string{"_NET_WM_STATE_ABOVE"})
}

func (s *Surface) setClickThrough() error {
	if err := shape.Init(s.conn); err != nil {
		return fmt.Errorf("shape extension unavailable: %w", err)
	}
	if err := xfixes.Init(s.conn); err != nil {
		return fmt.Errorf("xfixes extension unavailable: %w", err)
	}
	// The server only accepts XFixes requests after version negotiation.
	if _, err := xfixes.QueryVersion(s.conn, 5, 0).Reply(); err != nil {
		return err
	}

	region, err := xfixes.NewRegionId(s.conn)
	if err != nil {
		return err
	}
	if err := xfixes.CreateRegionChecked(s.conn, region, nil).Check(); err != nil {
		return err
	}
	defer xfixes.DestroyRegion(s.conn, region)

	return xfixes.SetWindowShapeRegionChecked(s.conn, s.window, shape.SkInput, 0, 0, region).Check()
}

func (s *Surface) createPictures() error {
	if err := render.Init(s.conn); err != nil {
		return fmt.Errorf("render extension unavailable: %w", err)
	}
	formats, err := render.QueryPictFormats(s.conn).Reply()
	if err != nil {
		return err
	}
	format, ok := formatForVisual(formats, s.visual)
	if !ok {
		return ErrNoPictFormat
	}
	s.format = format

	pid, err := render.NewPictureId(s.conn)
	if err != nil {
		return err
	}
	if err := render.CreatePictureChecked(s.conn, pid, xproto.Drawable(s.window), format,
		render.CpSubwindowMode, []uint32{xproto.SubwindowModeIncludeInferiors}).Check(); err != nil {
		return err
	}
	s.picture = pid

	pix, err := xproto.NewPixmapId(s.conn)
	if err != nil {
		return err
	}
	if err := xproto.CreatePixmapChecked(s.conn, depth, pix, xproto.Drawable(s.window),
		s.width, s.height).Check(); err != nil {
		return err
	}
	s.pixmap = pix

	gc, err := xproto.NewGcontextId(s.conn)
	if err != nil {
		return err
	}
	if err := xproto.CreateGCChecked(s.conn, gc, xproto.Drawable(pix), 0, nil).Check(); err != nil {
		return err
	}
	s.gc = gc

	src, err := render.NewPictureId(s.conn)
	if err != nil {
		return err
	}
	if err := render.CreatePictureChecked(s.conn, src, xproto.Drawable(pix), format, 0, nil).Check(); err != nil {
		return err
	}
	s.source = src

	s.Clear()
	return nil
}

func (s *Surface) mapWindow() error {
	if err := xproto.MapWindowChecked(s.conn, s.window).Check(); err != nil {
		return err
	}
	return xproto.ConfigureWindowChecked(s.conn, s.window,
		xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove}).Check()
}

func formatForVisual(formats *render.QueryPictFormatsReply, visual xproto.Visualid) (render.Pictformat, bool) {
	for _, screen := range formats.Screens {
		for _, d := range screen.Depths {
			for _, v := range d.Visuals {
				if v.Visual == visual {
					return v.Format, true
				}
			}
		}
	}
	return 0, false
}

// ByteOrderLSBFirst reports the server's image byte order
func (s *Surface) ByteOrderLSBFirst() bool {
	return s.lsbFirst
}

// Clear fills the whole window with transparent black using the Src
// operator, replacing rather than blending.
func (s *Surface) Clear() {
	render.FillRectangles(s.conn, render.PictOpSrc, s.picture, render.Color{},
		[]xproto.Rectangle{{X: 0, Y: 0, Width: s.width, Height: s.height}})
}

// Present uploads a ZPixmap frame of the canvas size and composites it
// over the window. The upload is split into bands of rows so no single
// PutImage exceeds the core protocol request size.
func (s *Surface) Present(data []byte) error {
	stride := int(s.width) * 4
	if want := stride * int(s.height); len(data) != want {
		return fmt.Errorf("frame is %d bytes, want %d", len(data), want)
	}
	for _, b := range s.bands {
		start := b.Y * stride
		xproto.PutImage(s.conn, xproto.ImageFormatZPixmap, xproto.Drawable(s.pixmap), s.gc,
			s.width, uint16(b.Rows), 0, int16(b.Y), 0, depth, data[start:start+b.Rows*stride])
	}
	render.Composite(s.conn, render.PictOpOver, s.source, 0, s.picture,
		0, 0, 0, 0, 0, 0, s.width, s.height)
	return nil
}

// LookupColor resolves a color name through the server's color database
// against the overlay colormap.
func (s *Surface) LookupColor(name string) (color.RGBA, error) {
	reply, err := xproto.LookupColor(s.conn, s.colormap, uint16(len(name)), name).Reply()
	if err != nil {
		return color.RGBA{}, fmt.Errorf("failed to look up color %q: %w", name, err)
	}
	return color.RGBA{
		R: uint8(reply.ExactRed >> 8),
		G: uint8(reply.ExactGreen >> 8),
		B: uint8(reply.ExactBlue >> 8),
		A: 0xff,
	}, nil
}

// Close frees the server resources and closes the connection. It is
// safe to call more than once.
func (s *Surface) Close() {
	s.closeOnce.Do(func() {
		s.release()
		s.logger.Debug("display closed")
	})
}

func (s *Surface) release() {
	if s.source != 0 {
		render.FreePicture(s.conn, s.source)
	}
	if s.picture != 0 {
		render.FreePicture(s.conn, s.picture)
	}
	if s.gc != 0 {
		xproto.FreeGC(s.conn, s.gc)
	}
	if s.pixmap != 0 {
		xproto.FreePixmap(s.conn, s.pixmap)
	}
	if s.window != 0 {
		xproto.DestroyWindow(s.conn, s.window)
	}
	if s.colormap != 0 {
		xproto.FreeColormap(s.conn, s.colormap)
	}
	// Round trip so the frees reach the server before the socket closes.
	xproto.GetInputFocus(s.conn).Reply()
	s.conn.Close()
}
