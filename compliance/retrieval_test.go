package compliance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docIDs(docs []Document) []string {
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids
}

func TestRetriever_FilterByFramework(t *testing.T) {
	stub := &stubCompleter{responses: []string{
		`{"relevantFrameworks": ["GDPR"], "keywords": []}`,
	}}
	r := NewRetriever(DefaultCatalog(), stub, nil)

	docs, frameworks := r.Retrieve(context.Background(), "a user data platform")

	assert.Equal(t, []string{"GDPR-001"}, docIDs(docs))
	assert.Equal(t, []string{"GDPR"}, frameworks)
}

func TestRetriever_FilterByKeyword(t *testing.T) {
	stub := &stubCompleter{responses: []string{
		`{"relevantFrameworks": [], "keywords": ["password"]}`,
	}}
	r := NewRetriever(DefaultCatalog(), stub, nil)

	docs, frameworks := r.Retrieve(context.Background(), "a login form")

	assert.Equal(t, []string{"ISO27001-001"}, docIDs(docs))
	assert.Empty(t, frameworks)
}

func TestRetriever_FrameworkMatchIsSubstring(t *testing.T) {
	stub := &stubCompleter{responses: []string{
		`{"relevantFrameworks": ["PCI"], "keywords": []}`,
	}}
	r := NewRetriever(DefaultCatalog(), stub, nil)

	docs, _ := r.Retrieve(context.Background(), "a payment platform")

	assert.Equal(t, []string{"PCI-DSS-001"}, docIDs(docs))
}

func TestRetriever_MarkdownFencedResponseAccepted(t *testing.T) {
	stub := &stubCompleter{responses: []string{
		"```json\n{\"relevantFrameworks\": [\"HIPAA\"], \"keywords\": []}\n```",
	}}
	r := NewRetriever(DefaultCatalog(), stub, nil)

	docs, frameworks := r.Retrieve(context.Background(), "a clinic portal")

	assert.Equal(t, []string{"HIPAA-001"}, docIDs(docs))
	assert.Equal(t, []string{"HIPAA"}, frameworks)
}

func TestRetriever_OracleFailureFallsBack(t *testing.T) {
	stub := &stubCompleter{err: errors.New("oracle down")}
	r := NewRetriever(DefaultCatalog(), stub, nil)

	docs, frameworks := r.Retrieve(context.Background(), "we handle user data")

	// Generic terms open the whole catalog.
	assert.Len(t, docs, len(DefaultCatalog().Documents))
	assert.Equal(t, []string{"General Security", "Data Protection"}, frameworks)
}

func TestRetriever_MissingFieldFallsBack(t *testing.T) {
	// Keywords absent entirely: a shape mismatch, not a partial success.
	stub := &stubCompleter{responses: []string{
		`{"relevantFrameworks": ["GDPR"]}`,
	}}
	r := NewRetriever(DefaultCatalog(), stub, nil)

	docs, frameworks := r.Retrieve(context.Background(), "an inventory tracker")

	assert.Equal(t, []string{"General Security", "Data Protection"}, frameworks)
	assert.NotEmpty(t, docs)
}

func TestRetriever_FallbackMatchesFrameworkName(t *testing.T) {
	stub := &stubCompleter{err: errors.New("oracle down")}
	r := NewRetriever(DefaultCatalog(), stub, nil)

	docs, _ := r.Retrieve(context.Background(), "an intake flow covered by hipaa")

	assert.Equal(t, []string{"HIPAA-001"}, docIDs(docs))
}

func TestRetriever_FallbackFloorNeverEmpty(t *testing.T) {
	stub := &stubCompleter{err: errors.New("oracle down")}
	r := NewRetriever(DefaultCatalog(), stub, nil)

	// No generic terms, no framework names: the floor kicks in.
	docs, frameworks := r.Retrieve(context.Background(), "an inventory tracker")

	require.Len(t, docs, fallbackDocumentCount)
	assert.Equal(t, []string{"GDPR-001", "HIPAA-001", "SOC2-001", "PCI-DSS-001"}, docIDs(docs))
	assert.Equal(t, []string{"General Security", "Data Protection"}, frameworks)
}

func TestRetriever_FallbackFloorOnSmallCatalog(t *testing.T) {
	catalog := &Catalog{Documents: DefaultCatalog().Documents[:2]}
	stub := &stubCompleter{err: errors.New("oracle down")}
	r := NewRetriever(catalog, stub, nil)

	docs, _ := r.Retrieve(context.Background(), "an inventory tracker")

	assert.Len(t, docs, 2)
}
