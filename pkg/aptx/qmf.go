package aptx

// Two-stage QMF (quadrature mirror filter) analysis/synthesis tree. Each
// stage is a two-branch polyphase FIR with 16 fixed taps per branch; the
// analysis tree turns 4 consecutive PCM samples into 4 sub-band samples
// (LF, MLF, MHF, HF) downsampled by 4, and the synthesis tree is its exact
// inverse.

const (
	nbFilters  = 2
	filterTaps = 16
	nbSubbands = 4
)

// filterSignal is a circular history buffer for one FIR branch. It is
// doubled (buffer[i] == buffer[i+filterTaps] at all times) purely so that
// convolution can read filterTaps contiguous entries starting at pos
// without wrapping arithmetic.
type filterSignal struct {
	buffer [2 * filterTaps]int32
	pos    uint8
}

func (s *filterSignal) push(sample int32) {
	s.buffer[s.pos] = sample
	s.buffer[s.pos+filterTaps] = sample
	s.pos = (s.pos + 1) & (filterTaps - 1)
}

// convolution computes the dot product of the signal history with coeffs
// and reduces the 64-bit accumulator to 24 bits via a rounding right shift.
func convolution(s *filterSignal, coeffs *[filterTaps]int32, shift uint) int32 {
	sig := s.buffer[s.pos:]
	var e int64
	for i := 0; i < filterTaps; i++ {
		e += int64(sig[i]) * int64(coeffs[i])
	}
	return rshift64Clip24(e, shift)
}

// Outer-stage QMF coefficients. The two branches are mirror images of one
// another.
var qmfOuterCoeffs = [nbFilters][filterTaps]int32{
	{
		730, -413, -9611, 43626, -121026, 269973, -585547, 2801966,
		697128, -160481, 27611, 8478, -10043, 3511, 688, -897,
	},
	{
		-897, 688, 3511, -10043, 8478, 27611, -160481, 697128,
		2801966, -585547, 269973, -121026, 43626, -9611, -413, 730,
	},
}

// Inner-stage QMF coefficients. The two branches are mirror images of one
// another.
var qmfInnerCoeffs = [nbFilters][filterTaps]int32{
	{
		1033, -584, -13592, 61697, -171156, 381799, -828088, 3962579,
		985888, -226954, 39048, 11990, -14203, 4966, 973, -1268,
	},
	{
		-1268, 973, 4966, -14203, 11990, 39048, -226954, 985888,
		3962579, -828088, 381799, -171156, 61697, -13592, -584, 1033,
	},
}

// qmfPolyphaseAnalysis is a half-band analysis filter: it pushes one new
// sample into each of the two branch histories and folds their
// convolutions into a low and a high sub-band output.
func qmfPolyphaseAnalysis(signal *[nbFilters]filterSignal, coeffs *[nbFilters][filterTaps]int32, shift uint, samples [nbFilters]int32) (low, high int32) {
	var subbands [nbFilters]int32
	for i := 0; i < nbFilters; i++ {
		signal[i].push(samples[nbFilters-1-i])
		subbands[i] = convolution(&signal[i], &coeffs[i], shift)
	}
	low = clipIntP2(subbands[0]+subbands[1], 23)
	high = clipIntP2(subbands[0]-subbands[1], 23)
	return low, high
}

// qmfPolyphaseSynthesis is the inverse of qmfPolyphaseAnalysis: it joins a
// low/high sub-band pair back into two branch outputs.
func qmfPolyphaseSynthesis(signal *[nbFilters]filterSignal, coeffs *[nbFilters][filterTaps]int32, shift uint, low, high int32) (s0, s1 int32) {
	subbands := [nbFilters]int32{low + high, low - high}
	var samples [nbFilters]int32
	for i := 0; i < nbFilters; i++ {
		signal[i].push(subbands[nbFilters-1-i])
		samples[i] = convolution(&signal[i], &coeffs[i], shift)
	}
	return samples[0], samples[1]
}

// qmf holds the signal history for one audio channel's two-stage QMF tree:
// one outer stage shared by both intermediate pairs, and two independent
// inner stages, one per intermediate pair.
type qmf struct {
	outerFilterSignal [nbFilters]filterSignal
	innerFilterSignal [nbFilters][nbFilters]filterSignal
}

// analysis splits 4 consecutive PCM samples into the 4 sub-band samples
// LF, MLF, MHF, HF (indices 0..3), downsampled by 4.
func (q *qmf) analysis(samples [4]int32) (subbandSamples [nbSubbands]int32) {
	var intermediate [4]int32
	for i := 0; i < 2; i++ {
		lo, hi := qmfPolyphaseAnalysis(&q.outerFilterSignal, &qmfOuterCoeffs, 23, [nbFilters]int32{samples[2*i], samples[2*i+1]})
		intermediate[0+i] = lo
		intermediate[2+i] = hi
	}
	for i := 0; i < 2; i++ {
		lo, hi := qmfPolyphaseAnalysis(&q.innerFilterSignal[i], &qmfInnerCoeffs, 23, [nbFilters]int32{intermediate[2*i], intermediate[2*i+1]})
		subbandSamples[2*i+0] = lo
		subbandSamples[2*i+1] = hi
	}
	return subbandSamples
}

// synthesis joins the 4 sub-band samples back into 4 consecutive PCM
// samples, upsampled by 4. It is the exact reverse of analysis, reusing the
// same signal history.
func (q *qmf) synthesis(subbandSamples [nbSubbands]int32) (samples [4]int32) {
	var intermediate [4]int32
	for i := 0; i < 2; i++ {
		s0, s1 := qmfPolyphaseSynthesis(&q.innerFilterSignal[i], &qmfInnerCoeffs, 22, subbandSamples[2*i+0], subbandSamples[2*i+1])
		intermediate[2*i+0] = s0
		intermediate[2*i+1] = s1
	}
	for i := 0; i < 2; i++ {
		s0, s1 := qmfPolyphaseSynthesis(&q.outerFilterSignal, &qmfOuterCoeffs, 21, intermediate[0+i], intermediate[2+i])
		samples[2*i+0] = s0
		samples[2*i+1] = s1
	}
	return samples
}
