package aptx

// reconstructedDifferencesUpdate appends reconstructedDifference to the
// predictor's circular history of order entries and returns the buffer
// from its start through the new entry, so that index last-i (for i in
// 0..order, last = order+pos) can be read without wrap-around
// arithmetic, mirroring the reference's trick of writing into both
// halves of a 2*order buffer and indexing down from a pointer into the
// second half.
func reconstructedDifferencesUpdate(p *predictionState, reconstructedDifference int32, order int) []int32 {
	rd1 := p.reconstructedDifferences[:order]
	rd2 := p.reconstructedDifferences[order : 2*order]
	pos := int(p.pos)

	rd1[pos] = rd2[pos]
	pos = (pos + 1) % order
	p.pos = int32(pos)
	rd2[pos] = reconstructedDifference

	return p.reconstructedDifferences[:order+pos+1]
}

// predictionFiltering reconstructs this frame's sample from
// reconstructedDifference, updates the long-term "difference" weights
// from the sign-correlation of the last order residuals, and produces
// the predicted_sample that the next frame's predictionFiltering call
// will reconstruct against.
func predictionFiltering(p *predictionState, reconstructedDifference int32, order int) {
	reconstructedSample := clipIntP2(reconstructedDifference+p.predictedSample, 23)
	predictor := clipIntP2(int32((int64(p.sWeight[0])*int64(p.previousReconstructedSample)+int64(p.sWeight[1])*int64(reconstructedSample))>>22), 23)
	p.previousReconstructedSample = reconstructedSample

	rd := reconstructedDifferencesUpdate(p, reconstructedDifference, order)
	last := len(rd) - 1 // rd[last-i] == reference's reconstructed_differences[-i], last == order+pos

	srd0 := diffSign(reconstructedDifference, 0) * (int32(1) << 23)

	var predictedDifference int64
	for i := 0; i < order; i++ {
		srd := (rd[last-i-1] >> 31) | 1
		p.dWeight[i] -= rshift32(p.dWeight[i]-srd*srd0, 8)
		predictedDifference += int64(rd[last-i]) * int64(p.dWeight[i])
	}

	p.predictedDifference = clipIntP2(int32(predictedDifference>>22), 23)
	p.predictedSample = clipIntP2(predictor+p.predictedDifference, 23)
}

// processSubband inverse-quantizes one sub-band's codeword, updates the
// two short-term sign-correlation weights from how the reconstructed
// residual's sign compares with its predicted sign and with the
// predictor's own recent sign history, and runs predictionFiltering to
// produce the sub-band sample and the next frame's prediction.
func processSubband(iq *invertQuantizeState, p *predictionState, quantizedSample, dither int32, tables *subbandTables) {
	invertQuantization(iq, quantizedSample, dither, tables)

	sign := diffSign(iq.reconstructedDifference, -p.predictedDifference)
	sameSign0 := sign * p.prevSign[0]
	sameSign1 := sign * p.prevSign[1]
	p.prevSign[0] = p.prevSign[1]
	p.prevSign[1] = sign | 1

	const range1 = 0x100000
	sw1 := rshift32(-sameSign1*p.sWeight[1], 1)
	sw1 = (clip(sw1, -range1, range1) &^ 0xF) * 16

	const range0 = 0x300000
	weight0 := 254*p.sWeight[0] + 0x800000*sameSign0 + sw1
	p.sWeight[0] = clip(rshift32(weight0, 8), -range0, range0)

	range1b := 0x3C0000 - p.sWeight[0]
	weight1 := 255*p.sWeight[1] + 0xC00000*sameSign1
	p.sWeight[1] = clip(rshift32(weight1, 8), -range1b, range1b)

	predictionFiltering(p, iq.reconstructedDifference, tables.predictionOrder)
}
