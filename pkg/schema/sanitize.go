package schema

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// maxSanitizePasses bounds the decode and strip loop in SanitizeText.
const maxSanitizePasses = 8

// Sanitize returns a copy of defs with markup stripped from every description
// and title string, at any depth. Plain text such as "a & b" survives
// unchanged; encoded markup such as "&lt;b&gt;" is stripped as well.
func Sanitize(defs map[string]Fragment) map[string]Fragment {
	if defs == nil {
		return nil
	}
	out := make(map[string]Fragment, len(defs))
	for name, def := range defs {
		cloned := def.Clone()
		sanitizeFragment(cloned)
		out[name] = cloned
	}
	return out
}

// SanitizeText strips markup from a single annotation value. Entities are
// decoded before each strip pass and the passes repeat until the text is
// stable, so markup hidden behind one or more layers of encoding never
// survives as live markup. Text that does not settle is returned in the
// policy's escaped form.
func SanitizeText(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	policy := textSanitizer()
	for range maxSanitizePasses {
		next := strings.TrimSpace(html.UnescapeString(policy.Sanitize(html.UnescapeString(text))))
		if next == text {
			return text
		}
		text = next
	}
	return strings.TrimSpace(policy.Sanitize(html.UnescapeString(text)))
}

func sanitizeFragment(fragment Fragment) {
	for key, value := range fragment {
		switch typed := value.(type) {
		case string:
			if key == KeyDescription || key == KeyTitle {
				fragment[key] = SanitizeText(typed)
			}
		case Fragment:
			sanitizeFragment(typed)
		case []any:
			for _, item := range typed {
				if nested, ok := item.(Fragment); ok {
					sanitizeFragment(nested)
				}
			}
		}
	}
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
