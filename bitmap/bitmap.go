// Package bitmap implements a minimal, from-scratch BMP encoder for the
// indexed-color images the engine produces (spec.md §6 "Output files",
// "Bitmap palettes"). No repo in the retrieved pack speaks BMP, and the
// standard library only ships a decoder (golang.org/x/image/bmp), so this
// follows the pack's nearest analogue for a chunked, explicit-header binary
// container: deepteams-webp/internal/container/riff.go's binary.Write-based,
// little-endian, offset-documented style.
//
// Every image is written top-down (negative biHeight), which the BMP
// format's DIB header explicitly supports for BI_RGB data; this lets the
// encoder stream rows as the caller produces them instead of buffering an
// entire multi-gigabyte image to flip it bottom-up.
package bitmap

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// RGB is one BMP color-table entry (stored as B,G,R,0 on disk).
type RGB struct {
	R, G, B byte
}

// Palette is an ordered list of color-table entries; PixelFunc return values
// index into it.
type Palette []RGB

// PixelFunc returns the palette index for cell (x,y), 0 <= x < width,
// 0 <= y < height, y counting top-down.
type PixelFunc func(x, y int) byte

const (
	fileHeaderSize = 14
	dibHeaderSize  = 40
)

// maxPayloadBytes mirrors spec.md's "each <= 2 GiB" tile-file limit;
// SaveTiled (grayscale.go, via maxTileSide) uses this to choose tile
// dimensions before ever calling Encode.
const maxPayloadBytes = 2 << 30

// rowStride returns the padded byte width of one scanline at the given bit
// depth, per the BMP spec's "rows padded to a multiple of 4 bytes" rule.
func rowStride(width, bitsPerPixel int) int {
	bitsPerRow := width * bitsPerPixel
	return ((bitsPerRow + 31) / 32) * 4
}

// PayloadSize returns the pixel-data byte size a width x height image at
// bitsPerPixel would occupy, for callers sizing tiles against
// maxPayloadBytes before encoding.
func PayloadSize(width, height, bitsPerPixel int) int64 {
	return int64(rowStride(width, bitsPerPixel)) * int64(height)
}

// Encode writes a complete BMP file (headers, color table, pixel data) for
// a width x height image at bitsPerPixel (4 or 8) using palette, streaming
// pixelAt(x,y) row by row without buffering the whole image.
func Encode(w io.Writer, width, height, bitsPerPixel int, palette Palette, pixelAt PixelFunc) error {
	if bitsPerPixel != 4 && bitsPerPixel != 8 {
		return fmt.Errorf("bitmap: unsupported bit depth %d (want 4 or 8)", bitsPerPixel)
	}
	maxColors := 1 << uint(bitsPerPixel)
	if len(palette) > maxColors {
		return fmt.Errorf("bitmap: palette has %d entries, exceeds %d-bit limit of %d", len(palette), bitsPerPixel, maxColors)
	}

	stride := rowStride(width, bitsPerPixel)
	colorTableBytes := len(palette) * 4
	pixelOffset := fileHeaderSize + dibHeaderSize + colorTableBytes
	fileSize := int64(pixelOffset) + int64(stride)*int64(height)

	bw := bufio.NewWriterSize(w, 1<<16)

	if err := writeFileHeader(bw, fileSize, pixelOffset); err != nil {
		return err
	}
	if err := writeDIBHeader(bw, width, height, bitsPerPixel, len(palette)); err != nil {
		return err
	}
	if err := writeColorTable(bw, palette); err != nil {
		return err
	}
	if err := writeRows(bw, width, height, bitsPerPixel, stride, pixelAt); err != nil {
		return err
	}
	return bw.Flush()
}

// EncodeFile is Encode with file creation and a guaranteed Close/error join,
// the shape most callers in this package want.
func EncodeFile(path string, width, height, bitsPerPixel int, palette Palette, pixelAt PixelFunc) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("bitmap: creating %s: %w", path, err)
	}
	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()
	return Encode(f, width, height, bitsPerPixel, palette, pixelAt)
}

func writeFileHeader(w io.Writer, fileSize int64, pixelOffset int) error {
	var hdr [fileHeaderSize]byte
	hdr[0], hdr[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(hdr[2:6], uint32(fileSize))
	// hdr[6:10] reserved, left zero.
	binary.LittleEndian.PutUint32(hdr[10:14], uint32(pixelOffset))
	_, err := w.Write(hdr[:])
	return err
}

func writeDIBHeader(w io.Writer, width, height, bitsPerPixel, numColors int) error {
	var hdr [dibHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[0:4], dibHeaderSize)
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(int32(width)))
	// Negative height: top-down pixel order (BI_RGB supports this).
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(int32(-height)))
	binary.LittleEndian.PutUint16(hdr[12:14], 1) // planes
	binary.LittleEndian.PutUint16(hdr[14:16], uint16(bitsPerPixel))
	// hdr[16:20] compression = BI_RGB (0)
	// hdr[20:24] image size; 0 is valid for BI_RGB
	// hdr[24:28], hdr[28:32] pixels-per-meter; left 0 (unspecified)
	binary.LittleEndian.PutUint32(hdr[32:36], uint32(numColors))
	binary.LittleEndian.PutUint32(hdr[36:40], uint32(numColors))
	_, err := w.Write(hdr[:])
	return err
}

func writeColorTable(w io.Writer, palette Palette) error {
	buf := make([]byte, 4*len(palette))
	for i, c := range palette {
		buf[4*i+0] = c.B
		buf[4*i+1] = c.G
		buf[4*i+2] = c.R
		buf[4*i+3] = 0
	}
	_, err := w.Write(buf)
	return err
}

func writeRows(w io.Writer, width, height, bitsPerPixel, stride int, pixelAt PixelFunc) error {
	row := make([]byte, stride)
	for y := 0; y < height; y++ {
		for i := range row {
			row[i] = 0
		}
		switch bitsPerPixel {
		case 4:
			for x := 0; x < width; x++ {
				idx := pixelAt(x, y) & 0x0f
				b := row[x/2]
				if x%2 == 0 {
					row[x/2] = (b &^ 0xf0) | (idx << 4)
				} else {
					row[x/2] = (b &^ 0x0f) | idx
				}
			}
		case 8:
			for x := 0; x < width; x++ {
				row[x] = pixelAt(x, y)
			}
		}
		if _, err := w.Write(row); err != nil {
			return fmt.Errorf("bitmap: writing row %d: %w", y, err)
		}
	}
	return nil
}
