// Package media holds the image-size registry, the S3 object store, size
// variant generation and <img> markup rendering used by the host.
package media

import "sync"

// SizeFull names the original upload.
const SizeFull = "full"

// Size is a named image size. With Crop the variant is exactly Width x Height;
// without it the image is scaled to fit inside the box.
type Size struct {
	Name   string
	Width  int
	Height int
	Crop   bool
}

// Sizes is a registry of named image sizes.
type Sizes struct {
	mu    sync.RWMutex
	sizes map[string]Size
}

// NewSizes returns a registry preloaded with the default sizes.
func NewSizes() *Sizes {
	s := &Sizes{sizes: make(map[string]Size)}
	s.Register(Size{Name: "thumbnail", Width: 150, Height: 150, Crop: true})
	s.Register(Size{Name: "medium", Width: 300, Height: 300})
	s.Register(Size{Name: "large", Width: 1024, Height: 1024})
	s.Register(Size{Name: "commentpress-feature", Width: 1200, Height: 600, Crop: true})
	return s
}

// Register adds or replaces a size.
func (s *Sizes) Register(size Size) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sizes[size.Name] = size
}

func (s *Sizes) Get(name string) (Size, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	size, ok := s.sizes[name]
	return size, ok
}
