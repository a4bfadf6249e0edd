package compliance

// Severity ranks the impact of a violation or document. Ordering is
// high > medium > low.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Rank returns a comparable weight for the severity (higher is more severe).
// Unknown severities rank below low.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether s is one of the known severity levels.
func (s Severity) Valid() bool {
	return s == SeverityHigh || s == SeverityMedium || s == SeverityLow
}

// Status is the overall compliance verdict for an analysis.
type Status string

const (
	StatusCompliant          Status = "compliant"
	StatusMinorIssues        Status = "minor-issues"
	StatusBlockingViolations Status = "blocking-violations"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusCompliant || s == StatusMinorIssues || s == StatusBlockingViolations
}

// Document is an immutable compliance knowledge-base entry. Documents are
// loaded once at process start and never mutated.
type Document struct {
	ID        string   `json:"id"`
	Framework string   `json:"framework"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Severity  Severity `json:"severity"`
	Source    string   `json:"source"`
}

// Violation is a detected compliance violation. Violations produced by the
// critical-violation rules carry BlockGeneration; those are the only
// violations that can halt the downstream pipeline.
type Violation struct {
	Code            string   `json:"code"`
	Framework       string   `json:"framework"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Severity        Severity `json:"severity"`
	Source          string   `json:"source"`
	Coaching        string   `json:"coaching"`
	RequiredActions []string `json:"requiredActions"`
	BlockGeneration bool     `json:"blockGeneration"`
}

// Suggestion is a non-blocking best-practice note.
type Suggestion struct {
	Code           string   `json:"code"`
	Framework      string   `json:"framework"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Severity       Severity `json:"severity"`
	Source         string   `json:"source"`
	Recommendation string   `json:"recommendation"`
	BestPractice   string   `json:"bestPractice"`
}

// RequirementBundle is a pre-written set of specification clauses injected
// automatically when an auto-compliance pattern matches. Bundles are merged
// into the generated specification verbatim.
type RequirementBundle struct {
	Type       string   `json:"type"`
	Title      string   `json:"title"`
	Specs      []string `json:"specs"`
	Frameworks []string `json:"frameworks"`
}

// ClarificationQuestion asks the user for information the analyzer could not
// resolve on its own.
type ClarificationQuestion struct {
	Question string `json:"question"`
	Why      string `json:"why"`
	Required bool   `json:"required"`
}

// CriticalViolationRule describes one entry of the critical-violation table.
// When Predicate is set it alone decides the match; otherwise the keyword
// list with MatchAll semantics decides it.
type CriticalViolationRule struct {
	Keywords  []string
	MatchAll  bool
	Predicate PredicateKind
	Violation Violation
}

// AutoCompliancePattern maps a keyword set to the requirement bundles it
// injects when matched.
type AutoCompliancePattern struct {
	Keywords     []string
	MatchAll     bool
	Requirements []RequirementBundle
}

// Verdict is the sole output of the compliance pipeline. It is always total
// and well-formed: every analysis produces one, including under oracle
// failure.
//
// Invariants: Status == StatusBlockingViolations implies Violations is
// non-empty and contains at least one entry with BlockGeneration set;
// Status == StatusCompliant with non-empty AutoComplianceSpecs implies
// Violations is empty.
type Verdict struct {
	Status                 Status                  `json:"overallCompliance"`
	Violations             []Violation             `json:"violations"`
	Suggestions            []Suggestion            `json:"suggestions"`
	Summary                string                  `json:"summary"`
	AnalyzedFrameworks     []string                `json:"analyzedFrameworks"`
	AutoComplianceSpecs    []RequirementBundle     `json:"autoComplianceSpecs"`
	ClarificationQuestions []ClarificationQuestion `json:"clarificationQuestions"`
}

// Blocking returns the subset of violations that halt generation.
func blocking(violations []Violation) []Violation {
	var out []Violation
	for _, v := range violations {
		if v.BlockGeneration {
			out = append(out, v)
		}
	}
	return out
}

// frameworksOf extracts the framework of each violation, in order, without
// deduplication (matches the shape the caller displays).
func frameworksOf(violations []Violation) []string {
	out := make([]string, 0, len(violations))
	for _, v := range violations {
		out = append(out, v.Framework)
	}
	return out
}
