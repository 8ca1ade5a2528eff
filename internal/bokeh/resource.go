// Package bokeh resolves BokehJS client assets and builds the render page.
package bokeh

import "fmt"

// DefaultCDNVersion is the BokehJS release loaded when no resource is given.
const DefaultCDNVersion = "3.5.2"

// ResourceDir is the virtual directory the asset server resolves local
// bundles under.
const ResourceDir = "/bokeh-resource-dir"

// ResourceKind selects where BokehJS client assets are loaded from.
type ResourceKind string

const (
	// ResourceCDN loads the release bundles from cdn.bokeh.org.
	ResourceCDN ResourceKind = "cdn"
	// ResourceLocalFolder serves bundles from a local folder through the
	// per-render asset server.
	ResourceLocalFolder ResourceKind = "local_folder"
	// ResourceLocalFile loads a single bundled file by direct file URI.
	ResourceLocalFile ResourceKind = "local_file"
)

// Resource describes the source of BokehJS client assets for one render.
// The zero value means "CDN at DefaultCDNVersion".
type Resource struct {
	Kind ResourceKind `json:"kind,omitempty"`
	// Version is the CDN release version; only meaningful for ResourceCDN.
	Version string `json:"version,omitempty"`
	// Path is the local folder (ResourceLocalFolder) or file
	// (ResourceLocalFile) holding the bundles.
	Path string `json:"path,omitempty"`
}

// Normalize fills defaults for zero-value fields.
func (r Resource) Normalize() Resource {
	if r.Kind == "" {
		r.Kind = ResourceCDN
	}
	if r.Kind == ResourceCDN && r.Version == "" {
		r.Version = DefaultCDNVersion
	}
	return r
}

// IsLocalFolder reports whether asset requests may be served from disk.
func (r Resource) IsLocalFolder() bool {
	return r.Normalize().Kind == ResourceLocalFolder
}

func cdnScriptTags(version string) string {
	const tag = "<script type='text/javascript' src='https://cdn.bokeh.org/bokeh/release/bokeh%s-%s.min.js'></script>\n"
	return fmt.Sprintf(tag, "", version) +
		fmt.Sprintf(tag, "-api", version) +
		fmt.Sprintf(tag, "-mathjax", version)
}

func localFolderScriptTags() string {
	const tag = "<script type='text/javascript' src='" + ResourceDir + "/bokeh%s.min.js'></script>\n"
	return fmt.Sprintf(tag, "") +
		fmt.Sprintf(tag, "-api") +
		fmt.Sprintf(tag, "-mathjax")
}

// ScriptTags returns the HTML fragment loading BokehJS for this resource.
// Versions and paths are passed through unvalidated; a bundle that fails to
// load surfaces later as a PAGE_ERROR when window.Bokeh is missing.
func (r Resource) ScriptTags() string {
	switch n := r.Normalize(); n.Kind {
	case ResourceLocalFolder:
		return localFolderScriptTags()
	case ResourceLocalFile:
		return fmt.Sprintf("<script type='text/javascript' src='file://%s'></script>\n", n.Path)
	default:
		return cdnScriptTags(n.Version)
	}
}
