package compliance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/assurecode/compliance/oracle"
)

// Completer is the slice of the oracle client the pipeline depends on.
// Narrowing to a single method keeps the stages stubbable in tests.
type Completer interface {
	Complete(ctx context.Context, req oracle.Request) (*oracle.Response, error)
}

// fallbackFrameworks are the framework labels reported when retrieval runs
// on the keyword fallback path.
var fallbackFrameworks = []string{"General Security", "Data Protection"}

// fallbackDocumentCount is how many leading catalog documents the degradation
// floor returns when keyword filtering finds nothing.
const fallbackDocumentCount = 4

// Retriever narrows the compliance knowledge base to documents relevant to a
// project description. The primary path asks the oracle to classify the
// description into frameworks and keywords; any failure degrades to plain
// keyword filtering, which always yields at least one document.
type Retriever struct {
	catalog *Catalog
	client  Completer
	logger  *slog.Logger
}

// NewRetriever creates a Retriever over the given catalog and oracle client.
func NewRetriever(catalog *Catalog, client Completer, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{catalog: catalog, client: client, logger: logger}
}

// classification is the fixed schema the oracle must return on the primary
// retrieval path.
type classification struct {
	RelevantFrameworks []string `json:"relevantFrameworks"`
	Keywords           []string `json:"keywords"`
}

// Retrieve returns the relevant knowledge-base documents and the frameworks
// consulted. It never fails: oracle errors, malformed responses, and empty
// classifications all degrade to the keyword fallback.
func (r *Retriever) Retrieve(ctx context.Context, description string) ([]Document, []string) {
	cls, err := r.classify(ctx, description)
	if err != nil {
		r.logger.Warn("Oracle retrieval failed, falling back to keyword search", "error", err)
		return r.fallback(description)
	}

	docs := r.filterByClassification(cls)
	return docs, cls.RelevantFrameworks
}

// classify asks the oracle which frameworks and keywords apply.
func (r *Retriever) classify(ctx context.Context, description string) (*classification, error) {
	prompt := fmt.Sprintf(`Analyze this project description and identify relevant compliance frameworks and keywords:

Project: %s

Consider frameworks like GDPR, HIPAA, SOC 2, PCI DSS, OWASP, ISO 27001, NIST, WCAG.

Respond with a single JSON object and nothing else:
{
  "relevantFrameworks": ["<compliance frameworks relevant to this project>"],
  "keywords": ["<key compliance-related keywords found>"]
}`, description)

	resp, err := r.client.Complete(ctx, oracle.Request{
		Messages: []oracle.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return nil, err
	}

	raw := oracle.ExtractJSON(resp.Content)
	if raw == "" {
		return nil, fmt.Errorf("no JSON object in retrieval response")
	}

	var cls classification
	if err := json.Unmarshal([]byte(raw), &cls); err != nil {
		return nil, fmt.Errorf("parse retrieval response: %w", err)
	}
	// Both schema fields must be present; a response missing either is a
	// shape mismatch, not a partial success.
	if cls.RelevantFrameworks == nil || cls.Keywords == nil {
		return nil, fmt.Errorf("retrieval response missing required fields")
	}
	return &cls, nil
}

// filterByClassification keeps documents whose framework matches a requested
// framework (case-insensitive substring) or whose title/content contains an
// extracted keyword.
func (r *Retriever) filterByClassification(cls *classification) []Document {
	var docs []Document
	for _, doc := range r.catalog.Documents {
		if docMatchesClassification(doc, cls) {
			docs = append(docs, doc)
		}
	}
	return docs
}

func docMatchesClassification(doc Document, cls *classification) bool {
	docFramework := strings.ToLower(doc.Framework)
	for _, fw := range cls.RelevantFrameworks {
		if strings.Contains(docFramework, strings.ToLower(fw)) {
			return true
		}
	}

	title := strings.ToLower(doc.Title)
	content := strings.ToLower(doc.Content)
	for _, kw := range cls.Keywords {
		lower := strings.ToLower(kw)
		if strings.Contains(content, lower) || strings.Contains(title, lower) {
			return true
		}
	}
	return false
}

// fallback filters the catalog by plain substring checks against the raw
// description. This is the degradation floor: it always returns a non-empty
// document set and the generic framework labels.
func (r *Retriever) fallback(description string) ([]Document, []string) {
	text := strings.ToLower(description)
	generic := strings.Contains(text, "data") ||
		strings.Contains(text, "security") ||
		strings.Contains(text, "user")

	var docs []Document
	for _, doc := range r.catalog.Documents {
		if generic || strings.Contains(text, strings.ToLower(doc.Framework)) {
			docs = append(docs, doc)
		}
	}

	if len(docs) == 0 {
		n := fallbackDocumentCount
		if n > len(r.catalog.Documents) {
			n = len(r.catalog.Documents)
		}
		docs = append(docs, r.catalog.Documents[:n]...)
	}

	frameworks := make([]string, len(fallbackFrameworks))
	copy(frameworks, fallbackFrameworks)
	return docs, frameworks
}
