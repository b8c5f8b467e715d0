package aptx

// MagicAptx and MagicAptxHD are the first encoded frame a freshly reset
// Context produces from a silent (all-zero) first PCM frame. Every
// predictor in a freshly reset Context starts from the same fixed
// weights, so every stream that starts with silence starts with one of
// these two values; callers that need to guess a stream's variant from
// raw bytes (a CLI reading from a pipe, say) can sniff for these rather
// than trust a container. A stream whose first frame is not silent can
// start with other bytes.
var (
	MagicAptx   = [4]byte{0x4b, 0xbf, 0x4b, 0xbf}
	MagicAptxHD = [6]byte{0x73, 0xbe, 0xff, 0x73, 0xbe, 0xff}
)

// rawFrameBytes is the width, in bytes, of one frame of raw 24-bit
// signed stereo PCM (4 samples, 2 channels, 3 bytes each).
const rawFrameBytes = 3 * nbChannels * 4

// decodeBytes runs aptX/aptX HD decoding over as many complete frames
// of data as it can before either running out of input or hitting a
// frame that fails its parity check. processed is always a multiple of
// ctx.frameSize() and stops a full frame or more short of len(data)
// exactly when a bad frame was encountered (a trailing partial frame
// alone leaves a shortfall of less than one frame); output only starts
// accumulating once the stream's
// fixed decode latency has been skipped.
func decodeBytes(ctx *Context, data []byte) (output []byte, processed int) {
	frameSize := ctx.frameSize()
	var samples [nbChannels][4]int32

	for processed+frameSize <= len(data) {
		if !decodeSamples(ctx, data[processed:processed+frameSize], &samples) {
			break
		}

		startSample := 0
		if ctx.decodeSkipLeading > 0 {
			ctx.decodeSkipLeading--
			if ctx.decodeSkipLeading > 0 {
				processed += frameSize
				continue
			}
			startSample = latencySamples % 4
		}

		for s := startSample; s < 4; s++ {
			for c := 0; c < nbChannels; c++ {
				v := uint32(samples[c][s])
				output = append(output, byte(v), byte(v>>8), byte(v>>16))
			}
		}
		processed += frameSize
	}
	return output, processed
}

// Encode reads as many complete 4-sample stereo frames as input holds
// (24 bytes of raw little-endian 24-bit signed PCM per frame, channels
// interleaved LLLRRR), encodes them, and returns the encoded bytes
// along with how many input bytes were consumed. Any trailing partial
// frame is left unconsumed for the caller to prepend to its next read.
func (ctx *Context) Encode(input []byte) (output []byte, consumed int) {
	frameSize := ctx.frameSize()
	var samples [nbChannels][4]int32

	for consumed+rawFrameBytes <= len(input) {
		pos := consumed
		for s := 0; s < 4; s++ {
			for c := 0; c < nbChannels; c++ {
				samples[c][s] = int32(uint32(input[pos]) | uint32(input[pos+1])<<8 | uint32(int8(input[pos+2]))<<16)
				pos += 3
			}
		}
		frame := make([]byte, frameSize)
		encodeSamples(ctx, &samples, frame)
		output = append(output, frame...)
		consumed += rawFrameBytes
	}
	return output, consumed
}

// EncodeFinish flushes the encoder's fixed QMF latency by running
// flushFrames all-zero frames through the encoder, resetting the
// Context once the flush completes. If maxBytes is positive, at most
// that many encoded bytes are produced per call and the flush may take
// several calls to finish; done reports whether the flush (and
// therefore the reset) completed on this call. A maxBytes of zero or
// negative flushes everything in one call.
func (ctx *Context) EncodeFinish(maxBytes int) (output []byte, done bool) {
	frameSize := ctx.frameSize()
	var samples [nbChannels][4]int32

	if ctx.encodeRemaining == 0 {
		return nil, true
	}

	for ctx.encodeRemaining > 0 {
		if maxBytes > 0 && len(output)+frameSize > maxBytes {
			return output, false
		}
		frame := make([]byte, frameSize)
		encodeSamples(ctx, &samples, frame)
		output = append(output, frame...)
		ctx.encodeRemaining--
	}

	ctx.Reset()
	return output, true
}

// Decode decodes as many complete frames as input holds, stopping at
// the first frame that fails its parity check. consumed reports how
// many input bytes were actually decoded; a shortfall of a full frame
// or more against len(input) is how a caller detects a parity failure.
// Decode and
// DecodeSync must not be mixed on the same Context.
func (ctx *Context) Decode(input []byte) (output []byte, consumed int) {
	return decodeBytes(ctx, input)
}

// DecodeSync is Decode's self-synchronizing counterpart, suitable for a
// continuous stream with a byte dropped here and there. It buffers any
// trailing partial frame internally (callers may feed it arbitrarily
// sized chunks), and on a parity failure it resets the predictor state
// and retries one byte later rather than giving up. synced reports
// whether the stream is, at the end of this call, decoding cleanly;
// dropped reports how many previously-unaccounted-for bytes were
// confirmed lost and folded into the running total once flushFrames
// consecutive frames decoded cleanly after a failure.
func (ctx *Context) DecodeSync(input []byte) (output []byte, synced bool, dropped int) {
	frameSize := ctx.frameSize()

	combined := make([]byte, 0, int(ctx.decodeSyncBufferLen)+len(input))
	combined = append(combined, ctx.decodeSyncBuffer[:ctx.decodeSyncBufferLen]...)
	combined = append(combined, input...)

	pos := 0
	for pos+frameSize <= len(combined) {
		end := len(combined)
		if ctx.decodeDropped > 0 {
			end = min(end, pos+(flushFrames-int(ctx.decodeSyncPackets))*frameSize)
		}
		out, processed := decodeBytes(ctx, combined[pos:end])
		output = append(output, out...)

		if processed == 0 {
			ctx.resetDecodeSync()
			ctx.decodeDropped++
			ctx.decodeSyncPackets = 0
			synced = false
			pos++
			continue
		}

		pos += processed
		if ctx.decodeDropped > 0 {
			frames := uint64(processed / frameSize)
			ctx.decodeDropped += uint64(processed)
			ctx.decodeSyncPackets += frames
			if ctx.decodeSyncPackets >= uint64(flushFrames) {
				dropped += int(ctx.decodeDropped)
				ctx.decodeDropped = 0
				ctx.decodeSyncPackets = 0
			}
		}
		if pos+frameSize <= end {
			ctx.resetDecodeSync()
			ctx.decodeDropped++
			ctx.decodeSyncPackets = 0
			synced = false
			pos++
		} else if ctx.decodeDropped == 0 {
			synced = true
		}
	}

	leftover := combined[pos:]
	copy(ctx.decodeSyncBuffer[:], leftover)
	ctx.decodeSyncBufferLen = uint8(len(leftover))

	return output, synced, dropped
}

// DecodeSyncFinish ends a DecodeSync stream, resetting the Context and
// reporting how many buffered, never-decoded input bytes it is
// discarding.
func (ctx *Context) DecodeSyncFinish() int {
	dropped := int(ctx.decodeSyncBufferLen)
	ctx.Reset()
	return dropped
}
