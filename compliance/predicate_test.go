package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredicateEvaluate(t *testing.T) {
	tests := []struct {
		name string
		kind PredicateKind
		text string
		want bool
	}{
		{"card over email", PredicateCardOverEmail, "email us your credit card", true},
		{"card over send", PredicateCardOverEmail, "send your credit card number", true},
		{"card with processor", PredicateCardOverEmail, "email receipts, credit card via stripe", false},
		{"card with paypal", PredicateCardOverEmail, "send credit card payments through paypal", false},
		{"card without channel", PredicateCardOverEmail, "we accept credit card", false},
		{"no card at all", PredicateCardOverEmail, "email us your address", false},
		{"health data bare", PredicateUnprotectedHealthData, "store patient files", true},
		{"health data prescription", PredicateUnprotectedHealthData, "track prescription refills", true},
		{"health data mitigated", PredicateUnprotectedHealthData, "store patient files, hipaa compliant", false},
		{"health data encrypted", PredicateUnprotectedHealthData, "encrypted medical records", false},
		{"no health data", PredicateUnprotectedHealthData, "store invoices", false},
		{"none never matches", PredicateNone, "credit card email patient", false},
		{"unknown never matches", PredicateKind("bogus"), "credit card email patient", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.Evaluate(tt.text))
		})
	}
}
