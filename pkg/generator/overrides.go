package generator

import (
	"github.com/goliatone/go-ruleschema/pkg/metadata"
	"github.com/goliatone/go-ruleschema/pkg/schema"
)

// ApplyOverride looks up the override stored for (target, key) and applies it
// to fragment. Static overrides are merged over the fragment; function
// overrides replace it with their return value, minus nil keywords. Without
// an override the result is a copy of fragment.
func ApplyOverride(fragment schema.Fragment, target metadata.Target, key string, opts metadata.Options) schema.Fragment {
	typ, ok := metadata.Resolve(target)
	if !ok {
		return schema.Merge(fragment)
	}
	override, ok := opts.Override(typ, key)
	if !ok || override == nil {
		return schema.Merge(fragment)
	}
	return schema.Merge(override.Apply(fragment, opts))
}
