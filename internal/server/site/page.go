package site

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"net/url"
	"sync"
)

// MediaScriptHandle is the handle of the host media picker bundle.
const MediaScriptHandle = "media-views"

// Script is a queued script tag.
type Script struct {
	Handle   string
	Src      string
	Deps     []string
	Version  string
	InFooter bool
}

type localized struct {
	objectName string
	data       any
}

// Page collects per-request rendering state: what kind of view is being
// rendered and which scripts the page must load.
type Page struct {
	singular bool
	mediaSrc string

	mu        sync.Mutex
	scripts   []Script
	handles   map[string]bool
	localized map[string][]localized
}

// NewPage starts a page. mediaSrc is where the media picker bundle is served.
func NewPage(singular bool, mediaSrc string) *Page {
	return &Page{
		singular:  singular,
		mediaSrc:  mediaSrc,
		handles:   make(map[string]bool),
		localized: make(map[string][]localized),
	}
}

// IsSingular reports whether the page shows a single post.
func (p *Page) IsSingular() bool { return p.singular }

// EnqueueMedia queues the media picker bundle.
func (p *Page) EnqueueMedia() {
	p.EnqueueScript(Script{Handle: MediaScriptHandle, Src: p.mediaSrc, InFooter: true})
}

// EnqueueScript queues s once per handle. Later calls for the same handle
// are ignored.
func (p *Page) EnqueueScript(s Script) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handles[s.Handle] {
		return
	}
	p.handles[s.Handle] = true
	p.scripts = append(p.scripts, s)
}

// Localize attaches data to handle as a global JS object named objectName,
// printed right before the handle's script tag.
func (p *Page) Localize(handle, objectName string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.localized[handle] = append(p.localized[handle], localized{objectName: objectName, data: data})
}

// Enqueued reports whether handle is queued.
func (p *Page) Enqueued(handle string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handles[handle]
}

// Scripts returns the queued scripts with dependencies ordered first.
// Dependencies that were never queued are skipped.
func (p *Page) Scripts() []Script {
	p.mu.Lock()
	defer p.mu.Unlock()

	byHandle := make(map[string]Script, len(p.scripts))
	for _, s := range p.scripts {
		byHandle[s.Handle] = s
	}

	var (
		out  []Script
		done = make(map[string]bool)
		visit func(h string)
	)
	visit = func(h string) {
		s, ok := byHandle[h]
		if !ok || done[h] {
			return
		}
		done[h] = true
		for _, d := range s.Deps {
			visit(d)
		}
		out = append(out, s)
	}
	for _, s := range p.scripts {
		visit(s.Handle)
	}
	return out
}

// ScriptTags renders the queued scripts and their localisation objects.
func (p *Page) ScriptTags() (template.HTML, error) {
	var buf bytes.Buffer
	for _, s := range p.Scripts() {
		p.mu.Lock()
		objs := p.localized[s.Handle]
		p.mu.Unlock()

		for _, o := range objs {
			data, err := json.Marshal(o.data)
			if err != nil {
				return "", fmt.Errorf("localize %s: %w", s.Handle, err)
			}
			fmt.Fprintf(&buf, "<script id=\"%s-js-extra\">\nvar %s = %s;\n</script>\n",
				template.HTMLEscapeString(s.Handle), o.objectName, data)
		}

		src := s.Src
		if s.Version != "" {
			if u, err := url.Parse(src); err == nil {
				q := u.Query()
				q.Set("ver", s.Version)
				u.RawQuery = q.Encode()
				src = u.String()
			}
		}
		fmt.Fprintf(&buf, "<script src=\"%s\" id=\"%s-js\"></script>\n",
			template.HTMLEscapeString(src), template.HTMLEscapeString(s.Handle))
	}
	return template.HTML(buf.String()), nil
}
