package rawstate

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/fractalio/juliatsacore/errs"
)

// ConvertLegacy merges a legacy per-row raw file family (one file per
// row, named "<stem>.row%06d" with no width header, each holding that
// row's (startWord, lengthWords, words...) triple) into the current
// single-stream format at outPath, for CMD=CONVERT.
func ConvertLegacy(stem string, n int, outPath string) error {
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", errs.ErrIO, outPath, err)
	}
	defer out.Close()
	w := bufio.NewWriter(out)

	if err := binary.Write(w, byteOrder, int32(n)); err != nil {
		return fmt.Errorf("%w: write width: %v", errs.ErrIO, err)
	}
	for y := 0; y < n; y++ {
		rowPath := fmt.Sprintf("%s.row%06d", stem, y)
		if err := copyLegacyRow(w, rowPath); err != nil {
			return fmt.Errorf("rawstate: convert row %d: %w", y, err)
		}
	}
	return w.Flush()
}

func copyLegacyRow(w *bufio.Writer, rowPath string) error {
	in, err := os.Open(rowPath)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", errs.ErrIO, rowPath, err)
	}
	defer in.Close()

	var startWord, lengthWords int32
	r := bufio.NewReader(in)
	if err := binary.Read(r, byteOrder, &startWord); err != nil {
		return fmt.Errorf("%w: start word: %v", errs.ErrIO, err)
	}
	if err := binary.Read(r, byteOrder, &lengthWords); err != nil {
		return fmt.Errorf("%w: length: %v", errs.ErrIO, err)
	}
	if err := binary.Write(w, byteOrder, startWord); err != nil {
		return fmt.Errorf("%w: write start word: %v", errs.ErrIO, err)
	}
	if err := binary.Write(w, byteOrder, lengthWords); err != nil {
		return fmt.Errorf("%w: write length: %v", errs.ErrIO, err)
	}
	for i := int32(0); i < lengthWords; i++ {
		var raw uint32
		if err := binary.Read(r, byteOrder, &raw); err != nil {
			return fmt.Errorf("%w: word %d: %v", errs.ErrIO, i, err)
		}
		if err := binary.Write(w, byteOrder, raw); err != nil {
			return fmt.Errorf("%w: write word %d: %v", errs.ErrIO, i, err)
		}
	}
	return nil
}
