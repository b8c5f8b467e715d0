package aptx

// packCodeword assembles an aptX channel's four quantized sub-band
// samples and combined parity bit into the 16-bit wire codeword: HF in
// the high bits (parity folded into its low bit), then MHF, MLF, LF.
func packCodeword(ch *channel) uint16 {
	parity := quantizedParity(ch)
	return uint16((((ch.quantize[3].quantizedSample & 0x06) | parity) << 13) |
		((ch.quantize[2].quantizedSample & 0x03) << 11) |
		((ch.quantize[1].quantizedSample & 0x0F) << 7) |
		((ch.quantize[0].quantizedSample & 0x7F) << 0))
}

// packCodewordHD is packCodeword's wider aptX HD counterpart, producing
// a 24-bit codeword carried in the low bits of a uint32.
func packCodewordHD(ch *channel) uint32 {
	parity := quantizedParity(ch)
	return uint32((((ch.quantize[3].quantizedSample & 0x01E) | parity) << 19) |
		((ch.quantize[2].quantizedSample & 0x00F) << 15) |
		((ch.quantize[1].quantizedSample & 0x03F) << 9) |
		((ch.quantize[0].quantizedSample & 0x1FF) << 0))
}

// unpackCodeword splits a 16-bit aptX codeword back into the four
// sub-bands' quantized samples, sign-extending each field, then
// overwrites the HF sample's low bit with the XOR of the dither parity,
// the other three sub-bands and the received parity bit. This restores
// the HF sample the encoder quantized, and leaves the channel's
// quantized parity equal to the parity bit the encoder sent.
func unpackCodeword(ch *channel, codeword uint16) {
	ch.quantize[0].quantizedSample = signExtend(int32(codeword>>0), 7)
	ch.quantize[1].quantizedSample = signExtend(int32(codeword>>7), 4)
	ch.quantize[2].quantizedSample = signExtend(int32(codeword>>11), 2)
	ch.quantize[3].quantizedSample = signExtend(int32(codeword>>13), 3)
	ch.quantize[3].quantizedSample = (ch.quantize[3].quantizedSample &^ 1) | quantizedParity(ch)
}

// unpackCodewordHD is unpackCodeword's aptX HD counterpart for 24-bit
// codewords.
func unpackCodewordHD(ch *channel, codeword uint32) {
	ch.quantize[0].quantizedSample = signExtend(int32(codeword>>0), 9)
	ch.quantize[1].quantizedSample = signExtend(int32(codeword>>9), 6)
	ch.quantize[2].quantizedSample = signExtend(int32(codeword>>15), 4)
	ch.quantize[3].quantizedSample = signExtend(int32(codeword>>19), 5)
	ch.quantize[3].quantizedSample = (ch.quantize[3].quantizedSample &^ 1) | quantizedParity(ch)
}
