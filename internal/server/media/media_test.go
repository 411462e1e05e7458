package media

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizes_Defaults(t *testing.T) {
	s := NewSizes()

	feature, ok := s.Get("commentpress-feature")
	require.True(t, ok)
	assert.Equal(t, Size{Name: "commentpress-feature", Width: 1200, Height: 600, Crop: true}, feature)

	_, ok = s.Get("nope")
	assert.False(t, ok)

	s.Register(Size{Name: "banner", Width: 1600, Height: 400, Crop: true})
	banner, ok := s.Get("banner")
	require.True(t, ok)
	assert.Equal(t, 400, banner.Height)
}

func TestFit(t *testing.T) {
	box := Size{Width: 300, Height: 300}
	tests := []struct {
		w, h, ww, wh int
	}{
		{600, 300, 300, 150},
		{300, 600, 150, 300},
		{100, 50, 100, 50},
		{0, 10, 0, 0},
	}
	for _, tt := range tests {
		w, h := fit(tt.w, tt.h, box)
		assert.Equal(t, [2]int{tt.ww, tt.wh}, [2]int{w, h}, "%dx%d", tt.w, tt.h)
	}
}

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}
	return img
}

func TestResize_Crop(t *testing.T) {
	out := Resize(solid(400, 400), Size{Width: 120, Height: 60, Crop: true})
	assert.Equal(t, image.Rect(0, 0, 120, 60), out.Bounds())

	out = Resize(solid(100, 400), Size{Width: 120, Height: 60, Crop: true})
	assert.Equal(t, image.Rect(0, 0, 120, 60), out.Bounds())
}

func TestResize_Fit(t *testing.T) {
	out := Resize(solid(400, 200), Size{Width: 100, Height: 100})
	assert.Equal(t, 100, out.Bounds().Dx())
	assert.Equal(t, 50, out.Bounds().Dy())

	small := solid(40, 20)
	assert.Same(t, small, Resize(small, Size{Width: 100, Height: 100}))
}

func TestEncodeDecode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(8, 4)))

	img, format, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, "png", format)

	data, mime, err := Encode(img, format)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.NotEmpty(t, data)

	data, mime, err = Encode(img, "jpeg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mime)
	assert.Equal(t, []byte{0xFF, 0xD8}, data[:2])

	_, _, err = Decode(strings.NewReader("not an image"))
	assert.ErrorContains(t, err, "decode image")
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".png", Extension("image/png"))
	assert.Equal(t, ".gif", Extension("image/gif"))
	assert.Equal(t, ".jpg", Extension("image/jpeg"))
}

func TestImageTag(t *testing.T) {
	tag := ImageTag(Image{Src: `https://cdn/x.jpg?a=1&b="2"`, Width: 1200, Height: 600, Alt: "A & B"}, "commentpress-feature")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(tag))
	require.NoError(t, err)
	img := doc.Find("img")
	require.Equal(t, 1, img.Length())

	src, _ := img.Attr("src")
	assert.Equal(t, `https://cdn/x.jpg?a=1&b="2"`, src)
	class, _ := img.Attr("class")
	assert.Equal(t, "attachment-commentpress-feature size-commentpress-feature wp-post-image", class)
	w, _ := img.Attr("width")
	assert.Equal(t, "1200", w)
	alt, _ := img.Attr("alt")
	assert.Equal(t, "A & B", alt)
}

func TestImageTag_NoDimensionsAndHostileSize(t *testing.T) {
	tag := ImageTag(Image{Src: "/x.png"}, `big" onload="x`)
	assert.NotContains(t, tag, "width=")
	assert.Contains(t, tag, `class="attachment-bigonloadx size-bigonloadx wp-post-image"`)
}
