package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectViolations_CardOverEmail(t *testing.T) {
	catalog := DefaultCatalog()

	violations := catalog.DetectViolations("Checkout",
		"We will email customers their credit card number after checkout")

	require.Len(t, violations, 1)
	assert.Equal(t, "PCI-DSS-BLOCK-001", violations[0].Code)
	assert.Equal(t, "PCI DSS", violations[0].Framework)
	assert.True(t, violations[0].BlockGeneration)
	assert.NotEmpty(t, violations[0].RequiredActions)
}

func TestDetectViolations_ProcessorMentionSuppressesCardRule(t *testing.T) {
	catalog := DefaultCatalog()

	violations := catalog.DetectViolations("Checkout",
		"We charge credit cards through Stripe and email receipts")

	for _, v := range violations {
		assert.NotEqual(t, "PCI-DSS-BLOCK-001", v.Code)
	}
}

func TestDetectViolations_UnprotectedHealthData(t *testing.T) {
	catalog := DefaultCatalog()

	t.Run("fires without compliance mention", func(t *testing.T) {
		violations := catalog.DetectViolations("Clinic", "We collect patient records")

		require.Len(t, violations, 1)
		assert.Equal(t, "HIPAA-BLOCK-001", violations[0].Code)
		assert.True(t, violations[0].BlockGeneration)
	})

	t.Run("suppressed by compliance mention", func(t *testing.T) {
		violations := catalog.DetectViolations("Clinic",
			"We collect patient records, encrypted at rest under HIPAA controls")

		assert.Empty(t, violations)
	})
}

func TestDetectViolations_MedicalAdviceIsNonBlocking(t *testing.T) {
	catalog := DefaultCatalog()

	// "secure" suppresses the health-data predicate so only the medical
	// advice rule matches.
	violations := catalog.DetectViolations("Wellness",
		"A secure tool that suggests treatment plans")

	require.Len(t, violations, 1)
	assert.Equal(t, "FDA-BLOCK-001", violations[0].Code)
	assert.False(t, violations[0].BlockGeneration)
}

func TestDetectViolations_CatalogOrder(t *testing.T) {
	catalog := DefaultCatalog()

	// Trips both the card rule and the health-data rule.
	violations := catalog.DetectViolations("Billing",
		"We email patients their credit card details")

	require.Len(t, violations, 2)
	assert.Equal(t, "PCI-DSS-BLOCK-001", violations[0].Code)
	assert.Equal(t, "HIPAA-BLOCK-001", violations[1].Code)
}

func TestDetectViolations_Pure(t *testing.T) {
	catalog := DefaultCatalog()

	first := catalog.DetectViolations("Checkout",
		"We will email customers their credit card number")
	second := catalog.DetectViolations("Checkout",
		"We will email customers their credit card number")

	assert.Equal(t, first, second)
}

func TestMatchPatterns_Authentication(t *testing.T) {
	catalog := DefaultCatalog()

	bundles := catalog.MatchPatterns("Login", "Users sign up with a password")

	require.Len(t, bundles, 1)
	assert.Equal(t, "Secure Authentication System", bundles[0].Title)
	assert.Equal(t, "authentication", bundles[0].Type)
	assert.Equal(t, []string{"OWASP", "SOC 2"}, bundles[0].Frameworks)
}

func TestMatchPatterns_EmailTriggersConsent(t *testing.T) {
	catalog := DefaultCatalog()

	bundles := catalog.MatchPatterns("Newsletter", "Send newsletters by email")

	require.Len(t, bundles, 1)
	assert.Equal(t, "GDPR Consent & Data Protection", bundles[0].Title)
}

func TestMatchPatterns_MultiplePatternsFlattenInOrder(t *testing.T) {
	catalog := DefaultCatalog()

	bundles := catalog.MatchPatterns("Shop", "Login page and Stripe checkout")

	require.GreaterOrEqual(t, len(bundles), 2)
	assert.Equal(t, "Secure Authentication System", bundles[0].Title)
	assert.Equal(t, "PCI DSS Compliant Payment Processing", bundles[1].Title)
}

func TestMatchPatterns_SharedKeywordContributesTwice(t *testing.T) {
	catalog := DefaultCatalog()

	// "register" appears in both the authentication and payments keyword
	// sets; both bundles are kept, nothing is deduplicated.
	bundles := catalog.MatchPatterns("Signup", "Customers register for an account")

	titles := make([]string, 0, len(bundles))
	for _, b := range bundles {
		titles = append(titles, b.Title)
	}
	assert.Contains(t, titles, "Secure Authentication System")
	assert.Contains(t, titles, "PCI DSS Compliant Payment Processing")
}

func TestMatchPatterns_TitleContributesToMatching(t *testing.T) {
	catalog := DefaultCatalog()

	bundles := catalog.MatchPatterns("Employee portal", "")

	titles := make([]string, 0, len(bundles))
	for _, b := range bundles {
		titles = append(titles, b.Title)
	}
	assert.Contains(t, titles, "Employee Data Protection & Labor Compliance")
}

func TestMatchPatterns_NoMatch(t *testing.T) {
	catalog := DefaultCatalog()

	bundles := catalog.MatchPatterns("Brochure", "A static brochure site")

	assert.Empty(t, bundles)
}

func TestKeywordsMatch(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		keywords []string
		matchAll bool
		want     bool
	}{
		{"any matches one", "we take payment online", []string{"payment", "invoice"}, false, true},
		{"any matches none", "a static site", []string{"payment", "invoice"}, false, false},
		{"all matches every", "send the invoice payment", []string{"payment", "invoice"}, true, true},
		{"all missing one", "send the invoice", []string{"payment", "invoice"}, true, false},
		{"all with empty list never matches", "anything", nil, true, false},
		{"any with empty list never matches", "anything", nil, false, false},
		{"keywords are case-insensitive", "uses stripe", []string{"STRIPE"}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, keywordsMatch(tt.text, tt.keywords, tt.matchAll))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "title body", normalize("Title", "Body"))
}
