package compliance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/assurecode/compliance/oracle"
)

// ErrAnalyzerUnavailable reports that the AI analysis stage could not produce
// a schema-valid result. Transport failures, unparseable responses, and shape
// mismatches all collapse into this one error so the orchestrator has a
// single degradation trigger.
var ErrAnalyzerUnavailable = errors.New("compliance analyzer unavailable")

// Analyzer issues the schema-constrained compliance judgment request to the
// reasoning oracle and validates the response at the boundary.
type Analyzer struct {
	client Completer
	logger *slog.Logger
}

// NewAnalyzer creates an Analyzer over the given oracle client.
func NewAnalyzer(client Completer, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{client: client, logger: logger}
}

// AnalysisInput carries the context for one analyzer call: the project text,
// the bundles the deterministic matcher already resolved (so the oracle does
// not re-ask for them), and the retrieved document excerpts.
type AnalysisInput struct {
	Title       string
	Description string
	Bundles     []RequirementBundle
	Documents   []Document
}

// AnalysisResult is the fixed output schema of the analyzer stage.
type AnalysisResult struct {
	Status      Status                  `json:"overallCompliance"`
	Violations  []Violation             `json:"violations"`
	Suggestions []Suggestion            `json:"suggestions"`
	Summary     string                  `json:"summary"`
	Questions   []ClarificationQuestion `json:"additionalQuestions"`
}

// validate checks the result against the schema. Any mismatch is treated the
// same as a transport failure upstream.
func (r *AnalysisResult) validate() error {
	if !r.Status.Valid() {
		return fmt.Errorf("invalid overallCompliance %q", r.Status)
	}
	for i, v := range r.Violations {
		if v.Code == "" || v.Title == "" {
			return fmt.Errorf("violation %d missing code or title", i)
		}
		if !v.Severity.Valid() {
			return fmt.Errorf("violation %d has invalid severity %q", i, v.Severity)
		}
	}
	for i, s := range r.Suggestions {
		if s.Code == "" || s.Title == "" {
			return fmt.Errorf("suggestion %d missing code or title", i)
		}
		// Suggestions are non-blocking by definition; high severity is out of schema.
		if s.Severity != SeverityLow && s.Severity != SeverityMedium {
			return fmt.Errorf("suggestion %d has invalid severity %q", i, s.Severity)
		}
	}
	for i, q := range r.Questions {
		if q.Question == "" {
			return fmt.Errorf("clarification question %d is empty", i)
		}
	}
	return nil
}

// Analyze runs the AI compliance judgment. Every failure mode wraps
// ErrAnalyzerUnavailable; nothing else escapes this boundary.
func (a *Analyzer) Analyze(ctx context.Context, input AnalysisInput) (*AnalysisResult, error) {
	resp, err := a.client.Complete(ctx, oracle.Request{
		Messages: []oracle.Message{
			{Role: "system", Content: analyzerSystemPrompt},
			{Role: "user", Content: buildAnalyzerPrompt(input)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalyzerUnavailable, err)
	}

	raw := oracle.ExtractJSON(resp.Content)
	if raw == "" {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrAnalyzerUnavailable)
	}

	var result AnalysisResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", ErrAnalyzerUnavailable, err)
	}
	if err := result.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalyzerUnavailable, err)
	}

	a.logger.Debug("Compliance analysis complete",
		"status", result.Status,
		"violations", len(result.Violations),
		"suggestions", len(result.Suggestions))

	return &result, nil
}

// analyzerSystemPrompt communicates the operating constraints: auto-generate
// controls instead of asking questions, reserve blocking status for
// categorically illegal practices, and bias toward compliant when the
// auto-detected bundles already cover the request.
const analyzerSystemPrompt = `You are an expert compliance automation system. Your PRIMARY goal is to AUTO-GENERATE complete compliance specifications, NOT to ask questions or block users.

CRITICAL OPERATING PRINCIPLES:

1. **NEVER ASK QUESTIONS** - Auto-generate everything based on detected patterns
   - User mentions "email" -> Auto-include GDPR consent, privacy policy, data export
   - User mentions "Stripe" -> Auto-include PCI DSS, webhook verification, secure tokens
   - User mentions "authentication" -> Auto-include bcrypt, session management, rate limiting
   - User mentions "health/medical" -> Auto-include HIPAA encryption, audit logs, BAAs
   - User has encrypted fields -> Auto-include encryption at rest/transit specs

2. **ONLY BLOCK FOR TRULY ILLEGAL PRACTICES:**
   - Sending credit cards through plain email/SMS (NOT through payment processor)
   - Claiming to provide medical diagnoses without FDA approval
   - Storing passwords in plaintext
   - Explicitly illegal activities

3. **AUTO-GENERATE, DON'T ASK:**
   - If they collect email -> Add consent checkbox spec automatically
   - If they have billing -> Add privacy policy spec automatically
   - If they have users -> Add data export/deletion specs automatically
   - If they mention security -> Add encryption specs automatically

4. **DEFAULT TO "COMPLIANT" STATUS:**
   - Return "compliant" when all necessary specs are auto-generated
   - Only return "minor-issues" if there's a best practice they might want to add (but not required)
   - Only return "blocking-violations" for truly illegal practices

5. **VIOLATIONS SHOULD BE RARE:**
   - The auto-detected requirements cover 99% of cases
   - Only flag a violation if it's something we CAN'T auto-generate (like changing illegal behavior)
   - Focus on GENERATING solutions, not LISTING problems

Respond with a single JSON object and nothing else, using exactly this schema:
{
  "overallCompliance": "compliant" | "minor-issues" | "blocking-violations",
  "violations": [{"code": "...", "framework": "...", "title": "...", "description": "...", "severity": "high"|"medium"|"low", "source": "...", "coaching": "...", "requiredActions": ["..."]}],
  "suggestions": [{"code": "...", "framework": "...", "title": "...", "description": "...", "severity": "low"|"medium", "source": "...", "recommendation": "...", "bestPractice": "..."}],
  "summary": "executive summary of compliance status",
  "additionalQuestions": [{"question": "...", "why": "...", "required": true|false}]
}`

// buildAnalyzerPrompt assembles the user message: project text, the already
// auto-detected bundles, and the retrieved document excerpts with metadata.
func buildAnalyzerPrompt(input AnalysisInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Project Title: %s\n", input.Title)
	fmt.Fprintf(&b, "Project Description: %s\n\n", input.Description)

	b.WriteString("Auto-Detected Compliance Requirements (WILL BE INCLUDED AUTOMATICALLY):\n")
	for _, bundle := range input.Bundles {
		fmt.Fprintf(&b, "- %s (%s)\n  %d specifications\n",
			bundle.Title, strings.Join(bundle.Frameworks, ", "), len(bundle.Specs))
	}

	b.WriteString("\nRelevant Compliance Knowledge Base:\n")
	for _, doc := range input.Documents {
		fmt.Fprintf(&b, "[%s] %s - %s\nSource: %s\nSeverity: %s\nRequirements: %s\n\n",
			doc.ID, doc.Framework, doc.Title, doc.Source, doc.Severity, doc.Content)
	}

	b.WriteString("Analyze and AUTO-GENERATE specifications:")
	return b.String()
}
