package compliance

import "strings"

// normalize joins title and description into the lower-cased text all
// deterministic matching runs against.
func normalize(title, description string) string {
	return strings.ToLower(title + " " + description)
}

// keywordsMatch applies the shared substring matching semantics: matchAll
// requires every keyword to appear in text, otherwise at least one must.
func keywordsMatch(text string, keywords []string, matchAll bool) bool {
	if matchAll {
		for _, kw := range keywords {
			if !strings.Contains(text, strings.ToLower(kw)) {
				return false
			}
		}
		return len(keywords) > 0
	}
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// DetectViolations evaluates the critical-violation rules against the
// project text and returns the violations of matching rules in catalog
// order. A rule with a predicate is decided by the predicate alone; each
// rule produces at most one violation per call. Pure function over the
// catalog and the input strings.
func (c *Catalog) DetectViolations(title, description string) []Violation {
	text := normalize(title, description)

	var detected []Violation
	for _, rule := range c.ViolationRules {
		var matches bool
		if rule.Predicate != PredicateNone {
			matches = rule.Predicate.Evaluate(text)
		} else {
			matches = keywordsMatch(text, rule.Keywords, rule.MatchAll)
		}
		if matches {
			detected = append(detected, rule.Violation)
		}
	}
	return detected
}

// MatchPatterns evaluates the auto-compliance patterns against the project
// text and returns the requirement bundles of matching patterns, flattened
// in catalog-then-bundle order. Bundles are never deduplicated: two patterns
// referencing conceptually the same control both contribute. Pure function;
// never consults the oracle.
func (c *Catalog) MatchPatterns(title, description string) []RequirementBundle {
	text := normalize(title, description)

	var detected []RequirementBundle
	for _, pattern := range c.Patterns {
		if keywordsMatch(text, pattern.Keywords, pattern.MatchAll) {
			detected = append(detected, pattern.Requirements...)
		}
	}
	return detected
}
