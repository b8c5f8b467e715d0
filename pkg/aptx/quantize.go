package aptx

// binSearch finds the largest index idx such that
// factor * intervals[idx] <= value<<24, using the classic half-step binary
// search. intervals must have at least nbIntervals entries.
func binSearch(value, factor int32, intervals []int32, nbIntervals int) int32 {
	idx := int32(0)
	for i := nbIntervals >> 1; i > 0; i >>= 1 {
		if int64(factor)*int64(intervals[idx+int32(i)]) <= int64(value)<<24 {
			idx += int32(i)
		}
	}
	return idx
}

// quantizeDifference quantizes one sub-band's prediction residual
// (sampleDifference) against the adaptive quantizationFactor, perturbing
// the decision with dither to shape the resulting error spectrum. It fills
// in q.quantizedSample, q.quantizedSampleParityChange (the alternative
// index that would flip the codeword's parity) and q.error (the magnitude
// of the quantization error, used by sync insertion to pick the
// least-damaging sub-band to flip).
func quantizeDifference(q *quantizeState, sampleDifference, dither, quantizationFactor int32, tables *subbandTables) {
	intervals := tables.intervals

	sampleDifferenceAbs := sampleDifference
	if sampleDifferenceAbs < 0 {
		sampleDifferenceAbs = -sampleDifferenceAbs
	}
	if sampleDifferenceAbs > (int32(1)<<23)-1 {
		sampleDifferenceAbs = (int32(1) << 23) - 1
	}

	quantizedSample := binSearch(sampleDifferenceAbs>>4, quantizationFactor, intervals, len(intervals))

	d := rshift32Clip24(int32((int64(dither)*int64(dither))>>32), 7) - (int32(1) << 23)
	d = int32(rshift64(int64(d)*int64(tables.quantizeDitherFactors[quantizedSample]), 23))

	lo := intervals[quantizedSample]
	hi := intervals[quantizedSample+1]
	mean := (hi + lo) / 2
	var sign int32 = 1
	if sampleDifference < 0 {
		sign = -1
	}
	interval := (hi - lo) * sign

	dithered := rshift64Clip24(int64(dither)*int64(interval)+(int64(clipIntP2(mean+d, 23))<<32), 32)
	errorRaw := (int64(sampleDifferenceAbs) << 20) - int64(dithered)*int64(quantizationFactor)
	q.error = int32(rshift64(errorRaw, 23))
	if q.error < 0 {
		q.error = -q.error
	}

	parityChange := quantizedSample
	if errorRaw < 0 {
		quantizedSample--
	} else {
		parityChange--
	}

	inv := int32(0)
	if sampleDifference < 0 {
		inv = -1
	}
	q.quantizedSample = quantizedSample ^ inv
	q.quantizedSampleParityChange = parityChange ^ inv
}
