// Package monitor finds monitor origins through the RandR extension.
package monitor

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
)

// Primary selects the primary output instead of an output index.
const Primary = -1

var (
	ErrInvalidMonitor = errors.New("invalid monitor number")
	ErrNoPrimary      = errors.New("failed to get primary output")
	ErrInactive       = errors.New("monitor is not active")
)

// Querier is the subset of RandR requests the lookup needs.
type Querier interface {
	ScreenResources() (*randr.GetScreenResourcesReply, error)
	PrimaryOutput() (randr.Output, error)
	OutputInfo(output randr.Output, ts xproto.Timestamp) (*randr.GetOutputInfoReply, error)
	CrtcInfo(crtc randr.Crtc, ts xproto.Timestamp) (*randr.GetCrtcInfoReply, error)
}

// Monitor describes one RandR output.
type Monitor struct {
	Index     int
	Name      string
	Connected bool
	Active    bool
	Bounds    image.Rectangle
}

// RandR answers queries against a live X connection.
type RandR struct {
	conn *xgb.Conn
	root xproto.Window
}

// NewRandR initializes the RandR extension on conn.
func NewRandR(conn *xgb.Conn, root xproto.Window) (*RandR, error) {
	if err := randr.Init(conn); err != nil {
		return nil, fmt.Errorf("randr extension unavailable: %w", err)
	}
	return &RandR{conn: conn, root: root}, nil
}

func (r *RandR) ScreenResources() (*randr.GetScreenResourcesReply, error) {
	return randr.GetScreenResources(r.conn, r.root).Reply()
}

func (r *RandR) PrimaryOutput() (randr.Output, error) {
	reply, err := randr.GetOutputPrimary(r.conn, r.root).Reply()
	if err != nil {
		return 0, err
	}
	return reply.Output, nil
}

func (r *RandR) OutputInfo(output randr.Output, ts xproto.Timestamp) (*randr.GetOutputInfoReply, error) {
	return randr.GetOutputInfo(r.conn, output, ts).Reply()
}

func (r *RandR) CrtcInfo(crtc randr.Crtc, ts xproto.Timestamp) (*randr.GetCrtcInfoReply, error) {
	return randr.GetCrtcInfo(r.conn, crtc, ts).Reply()
}

// Origin returns the top-left corner of the output at index.
func Origin(q Querier, index int) (image.Point, error) {
	res, err := q.ScreenResources()
	if err != nil || res == nil {
		return image.Point{}, fmt.Errorf("failed to get screen resources: %w", replyErr(err))
	}
	if index < 0 || index >= len(res.Outputs) {
		return image.Point{}, fmt.Errorf("%w: %d of %d", ErrInvalidMonitor, index, len(res.Outputs))
	}
	return outputOrigin(q, res, res.Outputs[index])
}

// PrimaryOrigin returns the top-left corner of the primary output.
func PrimaryOrigin(q Querier) (image.Point, error) {
	res, err := q.ScreenResources()
	if err != nil || res == nil {
		return image.Point{}, fmt.Errorf("failed to get screen resources: %w", replyErr(err))
	}
	output, err := q.PrimaryOutput()
	if err != nil {
		return image.Point{}, fmt.Errorf("%w: %v", ErrNoPrimary, err)
	}
	if output == 0 {
		return image.Point{}, ErrNoPrimary
	}
	return outputOrigin(q, res, output)
}

// Apply looks up the origin for index (or Primary) and stores it in dst.
// On failure the error is logged and dst is left untouched.
func Apply(q Querier, index int, dst *image.Point, logger *slog.Logger) bool {
	var (
		p   image.Point
		err error
	)
	if index == Primary {
		p, err = PrimaryOrigin(q)
	} else {
		p, err = Origin(q, index)
	}
	if err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("monitor lookup failed", "monitor", index, "error", err)
		return false
	}
	*dst = p
	return true
}

// List describes every output known to the server.
func List(q Querier) ([]Monitor, error) {
	res, err := q.ScreenResources()
	if err != nil || res == nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", replyErr(err))
	}

	monitors := make([]Monitor, 0, len(res.Outputs))
	for i, output := range res.Outputs {
		info, err := q.OutputInfo(output, res.ConfigTimestamp)
		if err != nil || info == nil {
			return nil, fmt.Errorf("failed to get output info for output %d: %w", i, replyErr(err))
		}
		m := Monitor{
			Index:     i,
			Name:      string(info.Name),
			Connected: info.Connection == randr.ConnectionConnected,
			Active:    info.Crtc != 0,
		}
		if m.Active {
			crtc, err := q.CrtcInfo(info.Crtc, res.ConfigTimestamp)
			if err != nil || crtc == nil {
				return nil, fmt.Errorf("failed to get crtc info for output %d: %w", i, replyErr(err))
			}
			m.Bounds = image.Rect(int(crtc.X), int(crtc.Y),
				int(crtc.X)+int(crtc.Width), int(crtc.Y)+int(crtc.Height))
		}
		monitors = append(monitors, m)
	}
	return monitors, nil
}

func outputOrigin(q Querier, res *randr.GetScreenResourcesReply, output randr.Output) (image.Point, error) {
	info, err := q.OutputInfo(output, res.ConfigTimestamp)
	if err != nil || info == nil {
		return image.Point{}, fmt.Errorf("failed to get output info: %w", replyErr(err))
	}
	if info.Crtc == 0 {
		return image.Point{}, ErrInactive
	}
	crtc, err := q.CrtcInfo(info.Crtc, res.ConfigTimestamp)
	if err != nil || crtc == nil {
		return image.Point{}, fmt.Errorf("failed to get crtc info: %w", replyErr(err))
	}
	return image.Pt(int(crtc.X), int(crtc.Y)), nil
}

var errEmptyReply = errors.New("empty reply")

func replyErr(err error) error {
	if err == nil {
		return errEmptyReply
	}
	return err
}
