package aptx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestTableShapes guards against the single-digit transcription errors a
// hand-typed constant table is prone to: every sub-band's companion
// tables (interval breakpoints, inverse-quantizer dither factors,
// quantizer dither factors, factor-select offsets) must all be the same
// length, and every prediction order must be positive and no larger
// than the widest predictor (24, LF).
func TestTableShapes(t *testing.T) {
	for variant := 0; variant < 2; variant++ {
		for subband := 0; subband < nbSubbands; subband++ {
			tables := &allTables[variant][subband]
			assert.Equal(t, len(tables.intervals), len(tables.invertDitherFactors), "variant %d subband %d", variant, subband)
			assert.Equal(t, len(tables.intervals), len(tables.quantizeDitherFactors), "variant %d subband %d", variant, subband)
			assert.Equal(t, len(tables.intervals), len(tables.factorSelectOffset), "variant %d subband %d", variant, subband)
			assert.Greater(t, tables.predictionOrder, 0)
			assert.LessOrEqual(t, tables.predictionOrder, 24)
			assert.Greater(t, tables.factorMax, int32(0))
		}
	}
}

func TestQuantizationFactorsTableLength(t *testing.T) {
	assert.Len(t, quantizationFactors, 32)
}
