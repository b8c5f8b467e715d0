package aptx

// invertQuantization reconstructs a sub-band's quantization residual from
// its quantized index and this frame's dither, then advances the
// factor-select adaptive state (and from it, the quantization factor) for
// the next frame. It runs identically during encoding (to mirror what the
// decoder will see) and decoding.
func invertQuantization(iq *invertQuantizeState, quantizedSample, dither int32, tables *subbandTables) {
	inv := int32(0)
	if quantizedSample < 0 {
		inv = -1
	}
	idx := (quantizedSample ^ inv) + 1

	qr := tables.intervals[idx] / 2
	if quantizedSample < 0 {
		qr = -qr
	}

	qr = rshift64Clip24((int64(qr)<<32)+int64(dither)*int64(tables.invertDitherFactors[idx]), 32)
	iq.reconstructedDifference = int32((int64(iq.quantizationFactor) * int64(qr)) >> 19)

	factorSelect := 32620 * iq.factorSelect
	factorSelect = rshift32(factorSelect+(int32(tables.factorSelectOffset[idx])<<15), 15)
	iq.factorSelect = clip(factorSelect, 0, tables.factorMax)

	qIdx := (iq.factorSelect & 0xFF) >> 3
	shift := uint((tables.factorMax - iq.factorSelect) >> 8)
	iq.quantizationFactor = (int32(quantizationFactors[qIdx]) << 11) >> shift
}
