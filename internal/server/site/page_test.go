package site

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPage_ScriptsOrderedByDependency(t *testing.T) {
	p := NewPage(true, "/media/media-views.js")

	p.EnqueueScript(Script{Handle: "switcher", Src: "/assets/s.js", Deps: []string{MediaScriptHandle}, Version: "0.3"})
	p.EnqueueMedia()
	p.EnqueueScript(Script{Handle: "switcher", Src: "/assets/other.js"})

	scripts := p.Scripts()
	require.Len(t, scripts, 2)
	assert.Equal(t, MediaScriptHandle, scripts[0].Handle)
	assert.Equal(t, "switcher", scripts[1].Handle)
	assert.Equal(t, "/assets/s.js", scripts[1].Src)
	assert.True(t, p.Enqueued("switcher"))
	assert.False(t, p.Enqueued("nope"))
}

func TestPage_ScriptTags(t *testing.T) {
	p := NewPage(true, "/media/media-views.js")
	p.EnqueueMedia()
	p.EnqueueScript(Script{Handle: "switcher", Src: "/assets/s.js", Deps: []string{MediaScriptHandle}, Version: "0.3"})
	p.Localize("switcher", "Switcher_Settings", map[string]string{"ajax_url": "/wp-admin/admin-ajax.php"})

	html, err := p.ScriptTags()
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	require.NoError(t, err)

	scripts := doc.Find("script")
	require.Equal(t, 3, scripts.Length())

	src, _ := scripts.Eq(0).Attr("src")
	assert.Equal(t, "/media/media-views.js", src)

	id, _ := scripts.Eq(1).Attr("id")
	assert.Equal(t, "switcher-js-extra", id)
	assert.Contains(t, scripts.Eq(1).Text(), `var Switcher_Settings = {"ajax_url":"/wp-admin/admin-ajax.php"};`)

	src, _ = scripts.Eq(2).Attr("src")
	assert.Equal(t, "/assets/s.js?ver=0.3", src)
	id, _ = scripts.Eq(2).Attr("id")
	assert.Equal(t, "switcher-js", id)
}

func TestPage_EmptyRendersNothing(t *testing.T) {
	p := NewPage(false, "")
	assert.False(t, p.IsSingular())

	html, err := p.ScriptTags()
	require.NoError(t, err)
	assert.Empty(t, string(html))
}
