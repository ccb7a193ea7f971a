package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuoteIdentifiers(t *testing.T) {
	t.Run("Escapes quotes in identifiers and literals", func(t *testing.T) {
		assert.Equal(t, "`my\\`table`", QuoteBacktickIdentifier("my`table"))
		assert.Equal(t, `"my""table"`, QuoteDoubleQuoteIdentifier(`my"table`))
		assert.Equal(t, "'it''s'", QuoteStringLiteral("it's"))
	})
}

func TestValueToString(t *testing.T) {
	t.Run("Renders values sent to a warehouse", func(t *testing.T) {
		testCases := []struct {
			value    interface{}
			expected interface{}
		}{
			{nil, nil},
			{"abc", "abc"},
			{[]byte("abc"), "abc"},
			{true, "true"},
			{int64(42), "42"},
			{1.5, "1.5"},
			{time.Date(2023, 11, 14, 22, 13, 20, 0, time.FixedZone("CET", 3600)), "2023-11-14T21:13:20Z"},
			{[]interface{}{"a", nil}, `["a",null]`},
			{map[string]interface{}{"street": "Main"}, `{"street":"Main"}`},
		}

		for _, testCase := range testCases {
			assert.Equal(t, testCase.expected, ValueToString(testCase.value))
		}
	})
}

func TestQueryValueString(t *testing.T) {
	t.Run("Renders NULL for nil values", func(t *testing.T) {
		assert.Equal(t, "NULL", QueryValueString(nil))
		assert.Equal(t, "7", QueryValueString(int32(7)))
	})
}

func TestDatasetTable(t *testing.T) {
	t.Run("Renders plain and quoted names", func(t *testing.T) {
		datasetTable := DatasetTable{Dataset: "test_dataset", Table: `my"table`}

		assert.Equal(t, `test_dataset.my"table`, datasetTable.String())
		assert.Equal(t, `"test_dataset"."my""table"`, datasetTable.QuotedString())
	})
}
