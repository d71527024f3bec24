package generator

import "github.com/goliatone/go-ruleschema/pkg/metadata"

// InheritedRules returns the rules declared on strict ancestors of target,
// excluding every (property, kind) pair that target redeclares itself. The
// redeclared rule replaces the ancestor's entirely rather than merging with
// it. Unresolvable targets inherit nothing.
func InheritedRules(target metadata.Target, rules []metadata.Rule) []metadata.Rule {
	typ, ok := metadata.Resolve(target)
	if !ok || typ.Base == nil {
		return nil
	}

	var inherited []metadata.Rule
	for _, rule := range rules {
		declaring, ok := rule.DeclaringType()
		if !ok || !typ.IsSubtypeOf(declaring) {
			continue
		}
		if redeclares(rules, typ, rule) {
			continue
		}
		inherited = append(inherited, rule)
	}
	return inherited
}

func redeclares(rules []metadata.Rule, target *metadata.Type, inherited metadata.Rule) bool {
	for _, rule := range rules {
		if rule.Property != inherited.Property || rule.Kind != inherited.Kind {
			continue
		}
		if sameTarget(rule.Target, target) {
			return true
		}
	}
	return false
}

// sameTarget reports declaring-type identity. Resolvable types compare by
// pointer; name-only targets compare by name.
func sameTarget(a, b metadata.Target) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, aok := metadata.Resolve(a)
	tb, bok := metadata.Resolve(b)
	switch {
	case aok && bok:
		return ta == tb
	case aok || bok:
		return false
	default:
		return a.TargetName() == b.TargetName()
	}
}
