package conversion

import (
	"fmt"
	"image"

	"contour2dxf/internal/opencv/safe"
)

// MatToImage converts an 8-bit GoCV Mat to a standard Go image. Single-channel
// mats become *image.Gray, BGR and BGRA mats become *image.RGBA.
func MatToImage(src *safe.Mat) (image.Image, error) {
	if err := safe.ValidateMatForOperation(src, "Mat to image conversion"); err != nil {
		return nil, err
	}

	rows := src.Rows()
	cols := src.Cols()
	channels := src.Channels()

	data, err := src.ToBytes()
	if err != nil {
		return nil, fmt.Errorf("pixel access failed: %w", err)
	}
	if len(data) != rows*cols*channels {
		return nil, fmt.Errorf("unexpected buffer size %d for %dx%dx%d Mat", len(data), cols, rows, channels)
	}

	switch channels {
	case 1:
		return matToGray(data, rows, cols), nil
	case 3:
		return bgrToRGBA(data, rows, cols), nil
	case 4:
		return bgraToRGBA(data, rows, cols), nil
	default:
		return nil, fmt.Errorf("unsupported channel count: %d", channels)
	}
}

func matToGray(data []byte, rows, cols int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+cols], data[y*cols:(y+1)*cols])
	}
	return img
}

func bgrToRGBA(data []byte, rows, cols int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		srcRow := data[y*cols*3:]
		dstRow := img.Pix[y*img.Stride:]
		for x := 0; x < cols; x++ {
			b, g, r := srcRow[x*3], srcRow[x*3+1], srcRow[x*3+2]
			dstRow[x*4] = r
			dstRow[x*4+1] = g
			dstRow[x*4+2] = b
			dstRow[x*4+3] = 255
		}
	}
	return img
}

func bgraToRGBA(data []byte, rows, cols int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, cols, rows))
	for y := 0; y < rows; y++ {
		srcRow := data[y*cols*4:]
		dstRow := img.Pix[y*img.Stride:]
		for x := 0; x < cols; x++ {
			b, g, r, a := srcRow[x*4], srcRow[x*4+1], srcRow[x*4+2], srcRow[x*4+3]
			// image.RGBA is alpha-premultiplied
			dstRow[x*4] = uint8(uint16(r) * uint16(a) / 255)
			dstRow[x*4+1] = uint8(uint16(g) * uint16(a) / 255)
			dstRow[x*4+2] = uint8(uint16(b) * uint16(a) / 255)
			dstRow[x*4+3] = a
		}
	}
	return img
}
