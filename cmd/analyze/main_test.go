package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watch2give-vendor/internal/analysis"
	"watch2give-vendor/internal/domain"
)

func TestWrite(t *testing.T) {
	resp := analysis.FromSeed(98)

	var buf bytes.Buffer
	require.NoError(t, write(&buf, "json", "ABC", resp))
	var got domain.TokenAnalysisResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, *resp, got)

	buf.Reset()
	require.NoError(t, write(&buf, "TEXT", "ABC", resp))
	out := buf.String()
	assert.Contains(t, out, "Seed:           98")
	assert.Contains(t, out, "Recommendation: stake")
	assert.Equal(t, 3, strings.Count(out, "  - "))

	assert.Error(t, write(&buf, "yaml", "ABC", resp))
}
