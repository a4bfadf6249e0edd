package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordID_RoundTrip(t *testing.T) {
	id := NewRecordID()
	assert.True(t, len(id) > len("analysis:"))

	key, err := ParseRecordID(id)
	require.NoError(t, err)
	assert.Equal(t, "analysis:"+key, id)
}

func TestRecordID_Unique(t *testing.T) {
	assert.NotEqual(t, NewRecordID(), NewRecordID())
}

func TestParseRecordID_Invalid(t *testing.T) {
	for _, id := range []string{
		"",
		"analysis",
		"analysis:",
		"workspace:abc",
		"abc",
	} {
		_, err := ParseRecordID(id)
		assert.Error(t, err, "id %q", id)
	}
}
