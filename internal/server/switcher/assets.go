package switcher

import (
	"embed"
	"io/fs"
)

//go:embed assets
var assets embed.FS

// Assets returns the client script and images rooted at "js/" and "images/".
func Assets() fs.FS {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}
