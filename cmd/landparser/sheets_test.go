package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mishannn/landparser-go/internal/summary"
)

func TestSheetValues(t *testing.T) {
	ts := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	values := sheetValues(ts, "강남구 역삼동", testSummary())
	require.Len(t, values, 2)

	first := values[0]
	require.Len(t, first, len(summary.Columns)+2)
	assert.Equal(t, "2025-03-01 09:00:00", first[0])
	assert.Equal(t, "강남구 역삼동", first[1])
	assert.Equal(t, "래미안", first[4])
	assert.Equal(t, 2015, first[5])

	second := values[1]
	assert.Equal(t, "", second[5])
	assert.Equal(t, "", second[6])
}
