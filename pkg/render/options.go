package render

// RenderOptions carry document level metadata. Renderers that emit bare
// definitions ignore them.
type RenderOptions struct {
	// Title and Version populate the info block of wrapping documents.
	Title   string
	Version string
}
