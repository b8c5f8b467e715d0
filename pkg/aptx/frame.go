package aptx

// encodeChannel runs one channel's QMF analysis, dither generation and
// per-sub-band quantization for one frame of 4 samples, leaving the
// result in ch.quantize for insertSync and packCodeword to consume.
func encodeChannel(ch *channel, samples *[4]int32, variant int) {
	subbandSamples := ch.qmf.analysis(*samples)
	generateDither(ch)

	for subband := 0; subband < nbSubbands; subband++ {
		tables := &allTables[variant][subband]
		diff := clipIntP2(subbandSamples[subband]-ch.prediction[subband].predictedSample, 23)
		quantizeDifference(&ch.quantize[subband], diff, ch.dither[subband], ch.invertQuantize[subband].quantizationFactor, tables)
	}
}

// decodeChannel runs one channel's QMF synthesis over the four
// sub-bands' most recently reconstructed samples, producing this
// frame's 4 output PCM samples.
func decodeChannel(ch *channel, samples *[4]int32) {
	var subbandSamples [nbSubbands]int32
	for subband := 0; subband < nbSubbands; subband++ {
		subbandSamples[subband] = ch.prediction[subband].previousReconstructedSample
	}
	*samples = ch.qmf.synthesis(subbandSamples)
}

// invertQuantizeAndPrediction runs processSubband over all four
// sub-bands of one channel. It must run after the frame's quantized
// samples are finalized (after insertSync on encode, after
// unpackCodeword on decode) since both paths feed the same adaptive
// predictor.
func invertQuantizeAndPrediction(ch *channel, variant int) {
	for subband := 0; subband < nbSubbands; subband++ {
		processSubband(&ch.invertQuantize[subband], &ch.prediction[subband], ch.quantize[subband].quantizedSample, ch.dither[subband], &allTables[variant][subband])
	}
}

// encodeSamples encodes one frame (4 stereo sample pairs) into
// ctx.frameSize() bytes of output.
func encodeSamples(ctx *Context, samples *[nbChannels][4]int32, output []byte) {
	variant := ctx.variant()
	for c := 0; c < nbChannels; c++ {
		encodeChannel(&ctx.channels[c], &samples[c], variant)
	}

	insertSync(&ctx.channels, &ctx.syncIdx)

	for c := 0; c < nbChannels; c++ {
		invertQuantizeAndPrediction(&ctx.channels[c], variant)
		if ctx.hd {
			codeword := packCodewordHD(&ctx.channels[c])
			output[3*c+0] = byte(codeword >> 16)
			output[3*c+1] = byte(codeword >> 8)
			output[3*c+2] = byte(codeword >> 0)
		} else {
			codeword := packCodeword(&ctx.channels[c])
			output[2*c+0] = byte(codeword >> 8)
			output[2*c+1] = byte(codeword >> 0)
		}
	}
}

// decodeSamples decodes one frame of ctx.frameSize() input bytes into 4
// stereo sample pairs. It returns false if the frame fails the parity
// check, in which case samples is left populated with whatever the bad
// codeword reconstructed to (the caller is responsible for discarding
// it and resynchronizing).
func decodeSamples(ctx *Context, input []byte, samples *[nbChannels][4]int32) bool {
	variant := ctx.variant()
	for c := 0; c < nbChannels; c++ {
		ch := &ctx.channels[c]
		generateDither(ch)

		if ctx.hd {
			codeword := uint32(input[3*c+0])<<16 | uint32(input[3*c+1])<<8 | uint32(input[3*c+2])<<0
			unpackCodewordHD(ch, codeword)
		} else {
			codeword := uint16(input[2*c+0])<<8 | uint16(input[2*c+1])<<0
			unpackCodeword(ch, codeword)
		}
		invertQuantizeAndPrediction(ch, variant)
	}

	ok := !checkParity(&ctx.channels, &ctx.syncIdx)

	for c := 0; c < nbChannels; c++ {
		decodeChannel(&ctx.channels[c], &samples[c])
	}

	return ok
}
