package bokeh

import (
	"strings"
	"testing"
)

func TestScriptTagsCDN(t *testing.T) {
	tags := Resource{Kind: ResourceCDN, Version: "3.4.1"}.ScriptTags()

	if got := strings.Count(tags, "<script"); got != 3 {
		t.Fatalf("ScriptTags() script count = %d; want 3", got)
	}
	for _, want := range []string{
		"https://cdn.bokeh.org/bokeh/release/bokeh-3.4.1.min.js",
		"https://cdn.bokeh.org/bokeh/release/bokeh-api-3.4.1.min.js",
		"https://cdn.bokeh.org/bokeh/release/bokeh-mathjax-3.4.1.min.js",
	} {
		if !strings.Contains(tags, want) {
			t.Fatalf("ScriptTags() missing %q in:\n%s", want, tags)
		}
	}
}

func TestScriptTagsDefaultVersionFallback(t *testing.T) {
	tags := Resource{}.ScriptTags()

	if !strings.Contains(tags, "bokeh-"+DefaultCDNVersion+".min.js") {
		t.Fatalf("zero-value resource did not fall back to version %s:\n%s", DefaultCDNVersion, tags)
	}
	if got := strings.Count(tags, "<script"); got != 3 {
		t.Fatalf("ScriptTags() script count = %d; want 3", got)
	}
}

func TestScriptTagsLocalFolder(t *testing.T) {
	tags := Resource{Kind: ResourceLocalFolder, Path: "/opt/bokehjs"}.ScriptTags()

	if got := strings.Count(tags, "<script"); got != 3 {
		t.Fatalf("ScriptTags() script count = %d; want 3", got)
	}
	for _, want := range []string{
		ResourceDir + "/bokeh.min.js",
		ResourceDir + "/bokeh-api.min.js",
		ResourceDir + "/bokeh-mathjax.min.js",
	} {
		if !strings.Contains(tags, want) {
			t.Fatalf("ScriptTags() missing %q in:\n%s", want, tags)
		}
	}
	if strings.Contains(tags, "/opt/bokehjs") {
		t.Fatalf("local folder path leaked into script tags:\n%s", tags)
	}
}

func TestScriptTagsLocalFile(t *testing.T) {
	tags := Resource{Kind: ResourceLocalFile, Path: "/opt/bokehjs/bokeh.min.js"}.ScriptTags()

	if got := strings.Count(tags, "<script"); got != 1 {
		t.Fatalf("ScriptTags() script count = %d; want 1", got)
	}
	if !strings.Contains(tags, "src='file:///opt/bokehjs/bokeh.min.js'") {
		t.Fatalf("ScriptTags() missing direct file URI:\n%s", tags)
	}
	if strings.Contains(tags, "mathjax") {
		t.Fatalf("local file resource must not load the mathjax bundle:\n%s", tags)
	}
}

func TestScriptTagsIdempotent(t *testing.T) {
	resources := []Resource{
		{},
		{Kind: ResourceCDN, Version: "3.5.2"},
		{Kind: ResourceLocalFolder, Path: "/tmp/assets"},
		{Kind: ResourceLocalFile, Path: "/tmp/bokeh.min.js"},
	}
	for _, res := range resources {
		if a, b := res.ScriptTags(), res.ScriptTags(); a != b {
			t.Fatalf("ScriptTags() not idempotent for kind %q", res.Kind)
		}
	}
}

func TestNormalizeDoesNotMutateReceiver(t *testing.T) {
	res := Resource{}
	_ = res.Normalize()
	if res.Kind != "" || res.Version != "" {
		t.Fatalf("Normalize() mutated receiver: %+v", res)
	}
}
