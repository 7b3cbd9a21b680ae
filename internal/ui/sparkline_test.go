package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderSparkline_EmptyData(t *testing.T) {
	assert.Empty(t, RenderSparkline([]float64{}, 10))
	assert.Empty(t, RenderSparkline(nil, 10))
}

func TestRenderSparkline_ZeroOrNegativeWidth(t *testing.T) {
	assert.Empty(t, RenderSparkline([]float64{50, 60, 70}, 0))
	assert.Empty(t, RenderSparkline([]float64{50, 60, 70}, -5))
}

func TestRenderSparkline_SingleValue(t *testing.T) {
	result := RenderSparkline([]float64{50}, 10)
	assert.True(t, containsBlockChar(result), "should contain a block character")
}

func TestRenderSparkline_AllSameValues(t *testing.T) {
	result := RenderSparkline([]float64{50, 50, 50, 50}, 10)
	assert.NotEmpty(t, result)
	stripped := stripANSI(result)
	assert.Equal(t, 4, len([]rune(stripped)))
}

func TestRenderSparkline_WidthTruncation(t *testing.T) {
	// Data has 10 points, but we only want to show 5
	data := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	result := RenderSparkline(data, 5)

	stripped := stripANSI(result)
	assert.Equal(t, 5, len([]rune(stripped)), "should show only last 5 data points")
}

func TestRenderSparkline_DataShorterThanWidth(t *testing.T) {
	data := []float64{25, 50, 75}
	result := RenderSparkline(data, 10)

	stripped := stripANSI(result)
	assert.Equal(t, 3, len([]rune(stripped)), "should show all 3 data points")
}

func TestRenderSparkline_MixedBoundaries(t *testing.T) {
	data := []float64{0, 50, 100}
	result := RenderSparkline(data, 10)

	runes := []rune(stripANSI(result))
	assert.Equal(t, '▁', runes[0], "0 should map to lowest block")
	assert.Equal(t, '█', runes[2], "100 should map to highest block")
}

func TestRenderSparkline_NegativeValues(t *testing.T) {
	data := []float64{-50, -25, 0, 25, 50}
	result := RenderSparkline(data, 10)

	stripped := stripANSI(result)
	assert.Equal(t, 5, len([]rune(stripped)), "should handle negative values")
}

func TestRenderFlatSparkline(t *testing.T) {
	result := RenderFlatSparkline([]float64{10, 20, 30}, 10, ColorInfo)
	stripped := stripANSI(result)
	assert.Equal(t, 3, len([]rune(stripped)))

	assert.Empty(t, RenderFlatSparkline(nil, 10, ColorInfo))
	assert.Empty(t, RenderFlatSparkline([]float64{1}, 0, ColorInfo))
}

func TestSparklineBlocksConstant(t *testing.T) {
	// Verify the blocks are in ascending order (visual height)
	assert.Equal(t, "▁▂▃▄▅▆▇█", sparklineBlocks)
}

// Helper functions

func containsBlockChar(s string) bool {
	for _, r := range s {
		if strings.ContainsRune(sparklineBlocks, r) {
			return true
		}
	}
	return false
}

func stripANSI(s string) string {
	// Simple ANSI stripper for testing
	var result strings.Builder
	inEscape := false
	for _, r := range s {
		if r == '\033' {
			inEscape = true
			continue
		}
		if inEscape {
			if r == 'm' {
				inEscape = false
			}
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}
