package display

import "fmt"

// putImageHeader is the fixed part of a PutImage request in bytes.
const putImageHeader = 24

// Band is a run of rows uploaded in one PutImage request
type Band struct {
	Y    int
	Rows int
}

// Bands splits a width x height 32-bit image into row bands whose
// PutImage requests stay within maxReq bytes. The request length field
// counts 4-byte units in 16 bits, so maxReq is capped at that limit.
func Bands(width, height, maxReq int) ([]Band, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}

	stride := width * 4
	rows := (min(maxReq, 0xffff*4) - putImageHeader) / stride
	if rows <= 0 {
		return nil, fmt.Errorf("a %d pixel row does not fit in one request", width)
	}

	bands := make([]Band, 0, (height+rows-1)/rows)
	for y := 0; y < height; y += rows {
		bands = append(bands, Band{Y: y, Rows: min(rows, height-y)})
	}
	return bands, nil
}
