package generator

import "github.com/goliatone/go-ruleschema/pkg/metadata"

// RequiredProperties lists the properties of target that belong in its
// required array, in order of first appearance in rules. rules is the combined
// own and inherited set; own rules are those declared on target itself.
//
// The default policy requires every property unless an optional marker
// (conditional-validation, is-empty) appears in its own or inherited rules.
// With skipMissing, a property is required only when its own rules carry
// is-defined, or when its own rules carry no optional marker and an inherited
// rule carries is-defined.
func RequiredProperties(target metadata.Target, rules []metadata.Rule, skipMissing bool) []string {
	names, grouped := groupByProperty(rules)

	required := make([]string, 0, len(names))
	for _, name := range names {
		var own, inherited []metadata.Rule
		for _, rule := range grouped[name] {
			if sameTarget(rule.Target, target) {
				own = append(own, rule)
			} else {
				inherited = append(inherited, rule)
			}
		}

		var keep bool
		if skipMissing {
			keep = hasPresence(own) || (!hasOptional(own) && hasPresence(inherited))
		} else {
			keep = !(hasOptional(own) || hasOptional(inherited))
		}
		if keep {
			required = append(required, name)
		}
	}
	return required
}

func hasPresence(rules []metadata.Rule) bool {
	for _, rule := range rules {
		if rule.Kind.IsPresenceMarker() {
			return true
		}
	}
	return false
}

func hasOptional(rules []metadata.Rule) bool {
	for _, rule := range rules {
		if rule.Kind.IsOptionalMarker() {
			return true
		}
	}
	return false
}

// groupByProperty buckets rules by property name, preserving first
// appearance. Object-level rules are skipped.
func groupByProperty(rules []metadata.Rule) ([]string, map[string][]metadata.Rule) {
	var names []string
	grouped := make(map[string][]metadata.Rule)
	for _, rule := range rules {
		if rule.IsObjectLevel() {
			continue
		}
		if _, seen := grouped[rule.Property]; !seen {
			names = append(names, rule.Property)
		}
		grouped[rule.Property] = append(grouped[rule.Property], rule)
	}
	return names, grouped
}
