package render

import "image"

// EncodeZPixmap converts a premultiplied RGBA image into 32 bits per
// pixel ZPixmap data for an ARGB visual. lsbFirst selects the server's
// image byte order.
func EncodeZPixmap(img *image.RGBA, lsbFirst bool) []byte {
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*4)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 0; i < len(row); i += 4 {
			r, g, bl, a := row[i], row[i+1], row[i+2], row[i+3]
			if lsbFirst {
				out = append(out, bl, g, r, a)
			} else {
				out = append(out, a, r, g, bl)
			}
		}
	}
	return out
}
