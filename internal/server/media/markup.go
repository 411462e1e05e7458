package media

import (
	"fmt"
	"html"
	"strings"
)

// Image is what the markup renderer needs to know about a resolved size.
type Image struct {
	Src    string
	Width  int
	Height int
	Alt    string
}

// ImageTag renders the <img> element for a post thumbnail in size.
func ImageTag(img Image, size string) string {
	size = sanitizeClass(size)
	var sb strings.Builder
	sb.WriteString("<img")
	if img.Width > 0 && img.Height > 0 {
		fmt.Fprintf(&sb, ` width="%d" height="%d"`, img.Width, img.Height)
	}
	fmt.Fprintf(&sb, ` src="%s"`, html.EscapeString(img.Src))
	fmt.Fprintf(&sb, ` class="attachment-%s size-%s wp-post-image"`, size, size)
	fmt.Fprintf(&sb, ` alt="%s" decoding="async" />`, html.EscapeString(img.Alt))
	return sb.String()
}

func sanitizeClass(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return -1
	}, s)
}
