package rules

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultCategory is assigned when no rule and no built-in extension matches.
const DefaultCategory = "Other"

// Rule maps a file name glob to a category label.
type Rule struct {
	Pattern  string
	Category string
}

// Ruleset is an immutable, ordered rule collection. Construct with New and
// share freely; classification never mutates state, so a Ruleset can be
// swapped atomically under concurrent readers.
type Ruleset struct {
	rules []Rule
}

// builtinByExtension is consulted after user rules. Extensions are lowercase
// and include the leading dot.
var builtinByExtension = map[string]string{
	".pdf":  "Documents",
	".docx": "Documents",
	".txt":  "Documents",
	".xlsx": "Documents",
	".pptx": "Documents",
	".jpg":  "Images",
	".jpeg": "Images",
	".png":  "Images",
	".webp": "Images",
	".gif":  "Images",
	".svg":  "Images",
	".mp4":  "Media",
	".mov":  "Media",
	".avi":  "Media",
	".mkv":  "Media",
	".mp3":  "Media",
	".zip":  "Archives",
	".rar":  "Archives",
	".7z":   "Archives",
	".tar":  "Archives",
	".py":   "Code",
	".js":   "Code",
	".html": "Code",
	".css":  "Code",
	".json": "Code",
}

// New validates patterns and builds a Ruleset. An empty rule list is valid:
// classification falls back to the built-in extension table.
func New(list []Rule) (*Ruleset, error) {
	rules := make([]Rule, 0, len(list))
	for i, rule := range list {
		pattern := strings.ToLower(strings.TrimSpace(rule.Pattern))
		category := strings.TrimSpace(rule.Category)
		if pattern == "" {
			return nil, fmt.Errorf("rule %d: empty pattern", i)
		}
		if category == "" {
			return nil, fmt.Errorf("rule %d (%q): empty category", i, rule.Pattern)
		}
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("rule %d: invalid pattern %q", i, rule.Pattern)
		}
		rules = append(rules, Rule{Pattern: pattern, Category: category})
	}
	return &Ruleset{rules: rules}, nil
}

// Classify maps a file name to a category. Deterministic and total: user
// rules in declared order first, then the built-in extension table, then
// DefaultCategory. Matching is case-insensitive.
func (r *Ruleset) Classify(fileName string) string {
	name := strings.ToLower(filepath.Base(fileName))

	if r != nil {
		for _, rule := range r.rules {
			// Patterns were validated in New; Match cannot fail here.
			if ok, _ := doublestar.Match(rule.Pattern, name); ok {
				return rule.Category
			}
		}
	}

	if category, ok := builtinByExtension[filepath.Ext(name)]; ok {
		return category
	}
	return DefaultCategory
}

// Len reports the number of user rules.
func (r *Ruleset) Len() int {
	if r == nil {
		return 0
	}
	return len(r.rules)
}

// Rules returns a copy of the ordered user rules.
func (r *Ruleset) Rules() []Rule {
	if r == nil {
		return nil
	}
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}
