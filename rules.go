package rygonet

import (
	"regexp"
	"strings"
)

// splitRulesSmart splits a comma-separated rule list without breaking inside
// parentheses, so "Heavy Weapon, Smoke (3\"), Slow" yields three rules but
// "Transport (2, Inf only)" stays whole.
func splitRulesSmart(text string) []string {
	var rules []string
	var current strings.Builder
	depth := 0

	for _, r := range text {
		switch r {
		case '(':
			depth++
			current.WriteRune(r)
		case ')':
			depth--
			current.WriteRune(r)
		case ',':
			if depth == 0 {
				if rule := strings.TrimSpace(current.String()); rule != "" {
					rules = append(rules, rule)
				}
				current.Reset()
			} else {
				current.WriteRune(r)
			}
		default:
			current.WriteRune(r)
		}
	}
	if rule := strings.TrimSpace(current.String()); rule != "" {
		rules = append(rules, rule)
	}
	return rules
}

var (
	loneParenRe = regexp.MustCompile(`^\([^)]+\)$`)
	bareWordRe  = regexp.MustCompile(`^[A-Za-z][A-Za-z\- ]*$`)
)

// mergeFragmentedRules repairs rule names that line wrapping split across
// list entries. A lone parenthetical like "(1)" reattaches to the previous
// entry, and consecutive bare words followed by a parenthetical collapse
// into one rule ("Light", "Indirect", "(1)" becomes "Light Indirect (1)").
func mergeFragmentedRules(rules []string) []string {
	var merged []string
	i := 0
	for i < len(rules) {
		rule := rules[i]

		// Two bare words then a parenthetical fragment.
		if i+2 < len(rules) &&
			bareWordRe.MatchString(rule) &&
			bareWordRe.MatchString(rules[i+1]) &&
			loneParenRe.MatchString(rules[i+2]) {
			merged = append(merged, rule+" "+rules[i+1]+" "+rules[i+2])
			i += 3
			continue
		}

		// One bare word then a parenthetical fragment.
		if i+1 < len(rules) &&
			bareWordRe.MatchString(rule) &&
			loneParenRe.MatchString(rules[i+1]) {
			merged = append(merged, rule+" "+rules[i+1])
			i += 2
			continue
		}

		// A lone parenthetical reattaches to the entry before it.
		if loneParenRe.MatchString(rule) && len(merged) > 0 {
			merged[len(merged)-1] = merged[len(merged)-1] + " " + rule
			i++
			continue
		}

		merged = append(merged, rule)
		i++
	}
	return merged
}
