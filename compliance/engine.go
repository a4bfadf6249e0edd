// Package compliance implements the compliance decision engine for the spec
// generation pipeline. Given a project title and description it decides
// whether generation may proceed, which regulatory controls must be baked
// into the eventual specification, and whether generation must be blocked
// outright.
//
// The pipeline is layered with strict precedence: deterministic blocking
// rules, then deterministic auto-compliance patterns, then AI-assisted
// retrieval and judgment, then a safe degraded verdict. Every analysis
// returns a total, well-formed Verdict; oracle failures only ever make the
// result less precise, never absent.
package compliance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/assurecode/compliance/oracle"
)

// Summaries for the verdict branches that do not pass through analyzer text.
const (
	blockedSummary = "CRITICAL COMPLIANCE VIOLATIONS DETECTED: Your project description contains practices that violate federal regulations. Review the violations below before proceeding. Generation has been blocked for your protection."

	degradedBlockedSummary = "CRITICAL COMPLIANCE VIOLATIONS DETECTED: AI analysis failed, but keyword detection found serious regulatory violations. Review the violations below before proceeding."

	degradedSummary = "Compliance analysis is currently unavailable. Please proceed with caution and consider a manual compliance review."
)

// degradedSuggestion is the single synthetic suggestion returned when the
// analyzer is unavailable and no critical violations were detected.
var degradedSuggestion = Suggestion{
	Code:           "GENERAL-001",
	Framework:      "General Security",
	Title:          "Security Review Recommended",
	Description:    "The compliance analysis system encountered an error. A manual security review is recommended.",
	Severity:       SeverityMedium,
	Source:         "Best Practice",
	Recommendation: "Please review your project for data protection, authentication, and security requirements.",
	BestPractice:   "Consider GDPR for data handling, OWASP for security vulnerabilities, and SOC 2 for access controls.",
}

// Engine orchestrates the compliance pipeline.
type Engine struct {
	catalog   *Catalog
	retriever *Retriever
	analyzer  *Analyzer
	client    Completer
	logger    *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithEngineLogger sets the logger.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates an Engine over the given catalog and oracle client.
func NewEngine(catalog *Catalog, client Completer, opts ...EngineOption) *Engine {
	e := &Engine{
		catalog: catalog,
		client:  client,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.retriever = NewRetriever(catalog, client, e.logger)
	e.analyzer = NewAnalyzer(client, e.logger)
	return e
}

// AnalyzeCompliance runs the full pipeline and always returns a well-formed
// verdict. The precedence is: hard block, then deterministic auto-approval,
// then AI-assisted judgment, then safe degradation. The oracle is never
// consulted for a case the deterministic layers already resolved.
func (e *Engine) AnalyzeCompliance(ctx context.Context, title, description string) *Verdict {
	e.logger.Debug("Starting compliance analysis", "title", title)

	bundles := e.catalog.MatchPatterns(title, description)
	criticalViolations := e.catalog.DetectViolations(title, description)

	e.logger.Debug("Deterministic detection complete",
		"auto_bundles", len(bundles),
		"critical_violations", len(criticalViolations))

	// Step 1: blocking violations short-circuit everything.
	if blockers := blocking(criticalViolations); len(blockers) > 0 {
		e.logger.Info("Blocking violations found, generation halted",
			"count", len(blockers))
		return &Verdict{
			Status:                 StatusBlockingViolations,
			Violations:             blockers,
			Suggestions:            []Suggestion{},
			Summary:                blockedSummary,
			AnalyzedFrameworks:     frameworksOf(blockers),
			AutoComplianceSpecs:    []RequirementBundle{},
			ClarificationQuestions: []ClarificationQuestion{},
		}
	}

	// Step 2: auto-compliance patterns are authoritative; the oracle is
	// skipped entirely. Non-blocking critical violations detected above are
	// not surfaced on this branch.
	if len(bundles) > 0 {
		frameworks := dedupeFrameworks(bundles)
		return &Verdict{
			Status:      StatusCompliant,
			Violations:  []Violation{},
			Suggestions: []Suggestion{},
			Summary: fmt.Sprintf(
				"Compliance requirements auto-detected and will be built into specifications. Detected: %s. All %s requirements will be included automatically in the generated specifications.",
				bundleTitles(bundles), strings.Join(frameworks, ", ")),
			AnalyzedFrameworks:     frameworks,
			AutoComplianceSpecs:    bundles,
			ClarificationQuestions: []ClarificationQuestion{},
		}
	}

	// Step 3: retrieval then AI analysis.
	docs, frameworks := e.retriever.Retrieve(ctx, description)
	e.logger.Debug("Retrieved compliance documents", "count", len(docs))

	result, err := e.analyzer.Analyze(ctx, AnalysisInput{
		Title:       title,
		Description: description,
		Bundles:     bundles,
		Documents:   docs,
	})
	if err != nil {
		e.logger.Warn("Analyzer unavailable, returning degraded verdict", "error", err)
		return e.degradedVerdict(criticalViolations, bundles)
	}

	// Deferred non-blocking critical violations lead the merged list.
	merged := append(append([]Violation{}, criticalViolations...), result.Violations...)
	status := result.Status
	if len(merged) == 0 {
		// Nothing detected anywhere: the verdict is compliant no matter
		// what status the analyzer reported.
		status = StatusCompliant
	}

	return &Verdict{
		Status:                 status,
		Violations:             merged,
		Suggestions:            emptyIfNil(result.Suggestions),
		Summary:                result.Summary,
		AnalyzedFrameworks:     emptyIfNil(frameworks),
		AutoComplianceSpecs:    emptyIfNil(bundles),
		ClarificationQuestions: emptyIfNil(result.Questions),
	}
}

// emptyIfNil normalizes a nil slice to an empty one so verdict fields
// marshal as [] rather than null on every branch.
func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// degradedVerdict is the terminal fallback when the analyzer is unavailable.
// Critical violations found by keyword detection are escalated to a blocking
// verdict; otherwise the caller gets a generic minor-issues verdict.
func (e *Engine) degradedVerdict(criticalViolations []Violation, bundles []RequirementBundle) *Verdict {
	if len(criticalViolations) > 0 {
		return &Verdict{
			Status:                 StatusBlockingViolations,
			Violations:             criticalViolations,
			Suggestions:            []Suggestion{},
			Summary:                degradedBlockedSummary,
			AnalyzedFrameworks:     frameworksOf(criticalViolations),
			AutoComplianceSpecs:    []RequirementBundle{},
			ClarificationQuestions: []ClarificationQuestion{},
		}
	}

	return &Verdict{
		Status:                 StatusMinorIssues,
		Violations:             []Violation{},
		Suggestions:            []Suggestion{degradedSuggestion},
		Summary:                degradedSummary,
		AnalyzedFrameworks:     []string{"General"},
		AutoComplianceSpecs:    emptyIfNil(bundles),
		ClarificationQuestions: []ClarificationQuestion{},
	}
}

// GenerateCoaching expands a violation into free-text guidance. This is
// best-effort auxiliary content: unlike the analyzer there is no schema
// validation and failures propagate to the caller.
func (e *Engine) GenerateCoaching(ctx context.Context, v Violation) (string, error) {
	prompt := fmt.Sprintf(`You are a compliance coach. Provide detailed, supportive guidance for this violation:

Code: %s
Title: %s
Description: %s
Severity: %s

Provide:
1. Why this matters (business and legal impact)
2. Step-by-step guidance to fix it
3. Examples of compliant implementations
4. Common mistakes to avoid

Keep it practical, clear, and encouraging.`, v.Code, v.Title, v.Description, v.Severity)

	resp, err := e.client.Complete(ctx, oracle.Request{
		Messages:  []oracle.Message{{Role: "user", Content: prompt}},
		MaxTokens: 1000,
	})
	if err != nil {
		return "", fmt.Errorf("generate coaching for %s: %w", v.Code, err)
	}
	return resp.Content, nil
}

// dedupeFrameworks returns the first-seen union of the bundles' frameworks.
func dedupeFrameworks(bundles []RequirementBundle) []string {
	seen := make(map[string]bool)
	var out []string
	for _, b := range bundles {
		for _, fw := range b.Frameworks {
			if !seen[fw] {
				seen[fw] = true
				out = append(out, fw)
			}
		}
	}
	return out
}

func bundleTitles(bundles []RequirementBundle) string {
	titles := make([]string, 0, len(bundles))
	for _, b := range bundles {
		titles = append(titles, b.Title)
	}
	return strings.Join(titles, ", ")
}
