package bokeh

import (
	"strings"
	"testing"
)

func TestBuildPageContainsRendererAndRoot(t *testing.T) {
	page := BuildPage(Resource{})

	for _, want := range []string{
		"<div id='root'></div>",
		"function renderBokeh(json, dpi)",
		"function setDPI(canvas, dpi)",
		"Bokeh is not loaded",
		"window.ipc.postMessage",
		BindingName,
		"box-sizing: border-box",
		"margin: 0",
	} {
		if !strings.Contains(page, want) {
			t.Fatalf("BuildPage() missing %q", want)
		}
	}
}

func TestBuildPageDoesNotInvokeRenderAtLoad(t *testing.T) {
	page := BuildPage(Resource{})

	// The only occurrence of renderBokeh( must be its definition; any
	// second one would be an invocation baked into the page.
	if got := strings.Count(page, "renderBokeh("); got != 1 {
		t.Fatalf("BuildPage() mentions renderBokeh( %d times; want the definition only", got)
	}
	for _, hook := range []string{"onload", "DOMContentLoaded", "addEventListener('load'"} {
		if strings.Contains(page, hook) {
			t.Fatalf("render invocation must be deferred to the host, found %q hook", hook)
		}
	}
}

func TestBuildPageIdempotent(t *testing.T) {
	res := Resource{Kind: ResourceLocalFolder, Path: "/srv/bokehjs"}
	if a, b := BuildPage(res), BuildPage(res); a != b {
		t.Fatalf("BuildPage() produced differing documents for the same resource")
	}
}

func TestBuildPageEmbedsResourceTags(t *testing.T) {
	page := BuildPage(Resource{Kind: ResourceCDN, Version: "9.9.9"})
	if !strings.Contains(page, "bokeh-9.9.9.min.js") {
		t.Fatalf("BuildPage() did not embed the resolved script tags")
	}
}
