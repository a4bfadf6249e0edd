package compliance

import "strings"

// PredicateKind names a secondary check attached to a critical-violation
// rule. Keeping predicates as named variants instead of closures keeps the
// rule table pure data, so it can be inspected and tested in isolation.
//
// A rule's keyword list is only a coarse pre-filter in the data model: when a
// predicate is set, the predicate alone decides the match.
type PredicateKind string

const (
	// PredicateNone means the rule matches on keywords only.
	PredicateNone PredicateKind = ""

	// PredicateCardOverEmail fires when payment card data is sent over
	// email without any mention of a payment processor.
	PredicateCardOverEmail PredicateKind = "card-over-email"

	// PredicateUnprotectedHealthData fires when health data is handled
	// without any mention of compliance or security measures.
	PredicateUnprotectedHealthData PredicateKind = "unprotected-health-data"
)

// Evaluate runs the predicate against normalized (lower-cased) text.
// Unknown kinds never match.
func (p PredicateKind) Evaluate(text string) bool {
	switch p {
	case PredicateCardOverEmail:
		return evalCardOverEmail(text)
	case PredicateUnprotectedHealthData:
		return evalUnprotectedHealthData(text)
	default:
		return false
	}
}

func evalCardOverEmail(text string) bool {
	hasProcessor := strings.Contains(text, "stripe") ||
		strings.Contains(text, "payment processor") ||
		strings.Contains(text, "paypal")
	hasCardEmail := strings.Contains(text, "credit card") &&
		(strings.Contains(text, "email") || strings.Contains(text, "send"))
	return hasCardEmail && !hasProcessor
}

func evalUnprotectedHealthData(text string) bool {
	hasHealthData := strings.Contains(text, "health") ||
		strings.Contains(text, "medical") ||
		strings.Contains(text, "patient") ||
		strings.Contains(text, "diagnosis") ||
		strings.Contains(text, "prescription")
	hasMitigations := strings.Contains(text, "hipaa") ||
		strings.Contains(text, "encrypted") ||
		strings.Contains(text, "secure") ||
		strings.Contains(text, "compliant")
	// Only flag health data handled without any compliance mention.
	return hasHealthData && !hasMitigations
}
