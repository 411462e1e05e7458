package media

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/nfnt/resize"
)

const jpegQuality = 85

// DefaultMaxPixels bounds width*height of images the service will decode.
const DefaultMaxPixels = 40_000_000

// Decode reads an image and reports its format ("jpeg", "png" or "gif").
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// fit returns the dimensions src would have after scaling into size without
// cropping. Images already inside the box keep their dimensions.
func fit(srcW, srcH int, size Size) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0
	}
	if srcW <= size.Width && srcH <= size.Height {
		return srcW, srcH
	}
	rw := float64(size.Width) / float64(srcW)
	rh := float64(size.Height) / float64(srcH)
	r := rw
	if rh < rw {
		r = rh
	}
	w, h := int(float64(srcW)*r+0.5), int(float64(srcH)*r+0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// Resize produces the variant of src for size.
func Resize(src image.Image, size Size) image.Image {
	b := src.Bounds()
	if !size.Crop {
		w, h := fit(b.Dx(), b.Dy(), size)
		if w == b.Dx() && h == b.Dy() {
			return src
		}
		return resize.Resize(uint(w), uint(h), src, resize.Lanczos3)
	}

	// Scale to cover the box, then take the centre.
	sw, sh := b.Dx(), b.Dy()
	if sw*size.Height > sh*size.Width {
		src = resize.Resize(0, uint(size.Height), src, resize.Lanczos3)
	} else {
		src = resize.Resize(uint(size.Width), 0, src, resize.Lanczos3)
	}

	b = src.Bounds()
	x0 := b.Min.X + (b.Dx()-size.Width)/2
	y0 := b.Min.Y + (b.Dy()-size.Height)/2
	dst := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
	draw.Draw(dst, dst.Bounds(), src, image.Pt(x0, y0), draw.Src)
	return dst
}

// Encode writes img in format. GIF variants are written as PNG.
func Encode(img image.Image, format string) ([]byte, string, error) {
	var buf bytes.Buffer
	switch format {
	case "png", "gif":
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/png", nil
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/jpeg", nil
	}
}

// Extension maps an image MIME type to a file extension.
func Extension(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}
