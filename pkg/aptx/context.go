// Package aptx implements a bit-exact encoder and decoder for the aptX and
// aptX HD sub-band ADPCM audio codecs. It operates on 24-bit signed stereo
// PCM and produces fixed 6:1 (aptX) or 4:1 (aptX HD) compressed streams.
//
// The package is a pure, single-threaded state transform: a *Context holds
// all per-stream state, and every operation mutates it in place. A Context
// is not safe for concurrent use, but independent Contexts never share
// mutable state and may be driven from separate goroutines without
// coordination.
package aptx

const (
	left  = 0
	right = 1

	nbChannels = 2

	// latencySamples is the fixed group delay, in samples, imposed by the
	// two-stage QMF tree.
	latencySamples = 90

	// flushFrames is latencySamples rounded up to a multiple of 4 and
	// divided by 4: the number of all-zero frames an encoder must emit at
	// end of stream to flush its QMF history, and the number of frames a
	// decoder must discard at the start of a stream before its output is
	// meaningful.
	flushFrames = (latencySamples + 3) / 4
)

// Major, Minor and Patch identify this package's implementation of the
// aptX/aptX HD wire format. They are immutable, process-wide constants, not
// mutable state.
const (
	Major = 0
	Minor = 2
	Patch = 0
)

// quantizeState is the per-sub-band output of the forward quantizer.
type quantizeState struct {
	quantizedSample             int32
	quantizedSampleParityChange int32
	error                       int32
}

// invertQuantizeState is the per-sub-band adaptive state driving the
// inverse quantizer: the current quantization step size, the factor-select
// index that produced it, and the most recently reconstructed difference.
type invertQuantizeState struct {
	quantizationFactor      int32
	factorSelect            int32
	reconstructedDifference int32
}

// predictionState is the per-sub-band backward-adaptive predictor state.
// dWeight and reconstructedDifferences are sized for the largest
// prediction order (24, used by the LF sub-band); narrower sub-bands only
// use a prefix.
type predictionState struct {
	prevSign                    [2]int32
	sWeight                     [2]int32
	dWeight                     [24]int32
	pos                         int32
	reconstructedDifferences    [48]int32
	previousReconstructedSample int32
	predictedDifference         int32
	predictedSample             int32
}

// channel holds all per-channel codec state: the dither generator's
// history, the QMF filter tree, and the four sub-bands' quantizer,
// inverse-quantizer and predictor state.
type channel struct {
	codewordHistory int32
	ditherParity    int32
	dither          [nbSubbands]int32

	qmf            qmf
	quantize       [nbSubbands]quantizeState
	invertQuantize [nbSubbands]invertQuantizeState
	prediction     [nbSubbands]predictionState
}

// Context is the entire mutable state of one aptX or aptX HD stream: two
// Channel records plus the cross-channel parity-sync counter and the
// streaming layer's flush/skip/resync bookkeeping. The zero value is not
// usable; construct one with Init.
type Context struct {
	hd bool

	channels [nbChannels]channel

	syncIdx           uint8
	encodeRemaining   uint8
	decodeSkipLeading uint8

	decodeSyncBuffer    [6]byte
	decodeSyncBufferLen uint8
	decodeDropped       uint64
	decodeSyncPackets   uint64
}

// sampleSize returns the per-channel codeword width in bytes: 2 for aptX,
// 3 for aptX HD.
func (ctx *Context) sampleSize() int {
	if ctx.hd {
		return 3
	}
	return 2
}

// frameSize returns the width, in bytes, of one encoded frame (both
// channels): 4 for aptX, 6 for aptX HD.
func (ctx *Context) frameSize() int {
	return 2 * ctx.sampleSize()
}

func (ctx *Context) variant() int {
	if ctx.hd {
		return 1
	}
	return 0
}

// Init allocates and resets a Context for the aptX codec (hd=false) or
// aptX HD codec (hd=true).
func Init(hd bool) *Context {
	ctx := &Context{hd: hd}
	ctx.Reset()
	return ctx
}

// Reset clears all internal state, predictor and parity-sync counters,
// preserving only the variant (aptX vs aptX HD) the Context was created
// with. Call it before encoding or decoding a new, unrelated stream.
func (ctx *Context) Reset() {
	hd := ctx.hd
	*ctx = Context{}
	ctx.hd = hd
	ctx.decodeSkipLeading = flushFrames
	ctx.encodeRemaining = flushFrames

	for c := range ctx.channels {
		for sb := range ctx.channels[c].prediction {
			ctx.channels[c].prediction[sb].prevSign[0] = 1
			ctx.channels[c].prediction[sb].prevSign[1] = 1
		}
	}
}

// resetDecodeSync resets everything Reset does, but preserves the
// auto-sync byte cache and drop/confirmation counters across the reset, so
// that a parity failure mid-stream can restart the predictor and QMF
// history without losing the resynchronization bookkeeping.
func (ctx *Context) resetDecodeSync() {
	buf := ctx.decodeSyncBuffer
	bufLen := ctx.decodeSyncBufferLen
	dropped := ctx.decodeDropped
	packets := ctx.decodeSyncPackets

	ctx.Reset()

	ctx.decodeSyncBuffer = buf
	ctx.decodeSyncBufferLen = bufLen
	ctx.decodeDropped = dropped
	ctx.decodeSyncPackets = packets
}
