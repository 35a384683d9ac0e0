// Package dxf writes the minimal entity-only DXF subset: one closed
// LWPOLYLINE on layer 0, no header section and no tables.
package dxf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"contour2dxf/internal/contour"
)

var ErrEmptyContour = errors.New("contour has no vertices")

const (
	preamble = "0\nSECTION\n2\nENTITIES\n0\nLWPOLYLINE\n8\n0\n70\n1\n"
	trailer  = "0\nENDSEC\n0\nEOF\n"
)

// WritePolyline emits c as a closed polyline. Image rows grow downwards and
// DXF Y grows upwards, so every Y is negated. The first vertex is not repeated
// at the end; the closed flag (group 70 = 1) closes the shape.
func WritePolyline(w io.Writer, c contour.Contour) error {
	if len(c) == 0 {
		return ErrEmptyContour
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(preamble); err != nil {
		return err
	}

	buf := make([]byte, 0, 32)
	for _, p := range c {
		buf = buf[:0]
		buf = append(buf, "10\n"...)
		buf = strconv.AppendInt(buf, int64(p.X), 10)
		buf = append(buf, "\n20\n"...)
		buf = strconv.AppendInt(buf, -int64(p.Y), 10)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}

	if _, err := bw.WriteString(trailer); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteFile creates or truncates path and writes c to it.
func WriteFile(path string, c contour.Contour) (err error) {
	if len(c) == 0 {
		return ErrEmptyContour
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create DXF file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close DXF file: %w", cerr)
		}
	}()

	if err := WritePolyline(f, c); err != nil {
		return fmt.Errorf("failed to write DXF file: %w", err)
	}
	return nil
}
