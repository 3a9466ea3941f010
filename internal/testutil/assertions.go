// Package testutil provides common test fixtures and assertions for bridge tests.
package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/xsd-bridge/domain/entities"
)

// AssertJSONEqual compares two JSON strings for equality, ignoring formatting
func AssertJSONEqual(t *testing.T, expected, actual string, msgAndArgs ...interface{}) {
	t.Helper()

	var expectedJSON, actualJSON interface{}
	require.NoError(t, json.Unmarshal([]byte(expected), &expectedJSON), "expected JSON is invalid")
	require.NoError(t, json.Unmarshal([]byte(actual), &actualJSON), "actual JSON is invalid")

	assert.Equal(t, expectedJSON, actualJSON, msgAndArgs...)
}

// AssertMapContains asserts that a map contains all expected key-value pairs
func AssertMapContains(t *testing.T, expectedMap, actualMap map[string]interface{}, msgAndArgs ...interface{}) {
	t.Helper()

	for key, expectedValue := range expectedMap {
		actualValue, ok := actualMap[key]
		assert.True(t, ok, "map should contain key %q", key)
		assert.Equal(t, expectedValue, actualValue, msgAndArgs...)
	}
}

// AssertEntries asserts the (code, message) pairs of a snapshot in order.
func AssertEntries(t *testing.T, snapshot *entities.ExceptionSnapshot, want ...entities.ExceptionEntry) {
	t.Helper()

	require.Equal(t, len(want), snapshot.Count(), "entry count")
	for i, w := range want {
		code, ok := snapshot.Code(i)
		require.True(t, ok)
		msg, _ := snapshot.Message(i)
		assert.Equal(t, w.Code, code, "code of entry %d", i)
		assert.Equal(t, w.Message, msg, "message of entry %d", i)
	}
}
